package domain

// Action enumerates the ticket operations the policy reasons about.
type Action string

const (
	// ActionCreate creates a new ticket.
	ActionCreate Action = "create"
	// ActionView reads a ticket.
	ActionView Action = "view"
	// ActionApprove moves a pending ticket to approved.
	ActionApprove Action = "approve"
	// ActionReject moves a pending ticket to rejected.
	ActionReject Action = "reject"
	// ActionMarkPaid moves an approved ticket to paid.
	ActionMarkPaid Action = "markPaid"
	// ActionWritePins edits pinned annotations on a ticket.
	ActionWritePins Action = "writePins"
)

// Can decides whether actor may even attempt action on ticket. It is pure
// and status-blind: whether the action is valid for the ticket's current
// status is the state machine's concern, not the policy's.
//
// Devices carry exactly the authority of their bound user; ownership checks
// treat the two kinds identically. Public actors are denied everything
// except view, which is possession-based: the unguessable public id is the
// real gate, enforced by the lookup path.
func Can(actor Actor, action Action, ticket *Ticket) bool {
	switch action {
	case ActionCreate:
		return actor.Kind == ActorKindUser || actor.Kind == ActorKindDevice

	case ActionView:
		if ticket == nil {
			return false
		}
		switch actor.Kind {
		case ActorKindUser, ActorKindDevice:
			return actor.UserID == ticket.UserID
		case ActorKindPublic:
			return true
		default:
			return false
		}

	case ActionApprove, ActionReject, ActionMarkPaid, ActionWritePins:
		if ticket == nil {
			return false
		}
		switch actor.Kind {
		case ActorKindUser, ActorKindDevice:
			return actor.UserID == ticket.UserID
		default:
			// No public self-service path; payment is mediated by the
			// payment orchestrator, never by direct state mutation.
			return false
		}

	default:
		return false
	}
}

// Authorize is the assert form of Can, returning FORBIDDEN on denial.
func Authorize(actor Actor, action Action, ticket *Ticket) error {
	if !Can(actor, action, ticket) {
		return Forbidden("cannot " + string(action) + " this ticket")
	}
	return nil
}
