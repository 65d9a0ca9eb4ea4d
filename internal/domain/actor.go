package domain

// ActorKind discriminates the closed set of request identities. Policy and
// workflow code switches exhaustively over the kind so that adding a new
// one is visible everywhere it matters.
type ActorKind string

const (
	// ActorKindUser is an authenticated web user.
	ActorKindUser ActorKind = "user"
	// ActorKindDevice is a paired companion device acting for its bound user.
	ActorKindDevice ActorKind = "device"
	// ActorKindPublic is an anonymous caller holding only a ticket public id.
	ActorKindPublic ActorKind = "public"
	// ActorKindGuest is an unauthenticated web visitor with a durable guest cookie.
	ActorKindGuest ActorKind = "guest"
)

// Actor is the resolved identity of an inbound request. It is reconstructed
// per request and never persisted. UserID is set for user and device kinds,
// DeviceID only for devices, GuestID only for guests.
type Actor struct {
	Kind     ActorKind
	UserID   UserID
	DeviceID DeviceID
	GuestID  string
}

// UserActor builds an actor for an authenticated web user.
func UserActor(id UserID) Actor {
	return Actor{Kind: ActorKindUser, UserID: id}
}

// DeviceActor builds an actor for a paired device acting on behalf of user.
func DeviceActor(device DeviceID, user UserID) Actor {
	return Actor{Kind: ActorKindDevice, UserID: user, DeviceID: device}
}

// PublicActor builds the identityless actor used by the public trust zone.
func PublicActor() Actor {
	return Actor{Kind: ActorKindPublic}
}

// GuestActor builds an actor for an unauthenticated web visitor.
func GuestActor(guestID string) Actor {
	return Actor{Kind: ActorKindGuest, GuestID: guestID}
}
