package domain

import (
	"testing"
)

func TestPolicyCreate(t *testing.T) {
	cases := []struct {
		actor Actor
		want  bool
	}{
		{UserActor("usr_01"), true},
		{DeviceActor("dev_01", "usr_01"), true},
		{PublicActor(), false},
		{GuestActor("guest-1"), false},
	}
	for _, tc := range cases {
		if got := Can(tc.actor, ActionCreate, nil); got != tc.want {
			t.Fatalf("create as %s: expected %v, got %v", tc.actor.Kind, tc.want, got)
		}
	}
}

func TestPolicyOwnershipActions(t *testing.T) {
	ticket := testTicket(TicketStatusPending)
	other := UserActor("usr_other")
	owner := UserActor(ticket.UserID)
	ownerDevice := DeviceActor("dev_01", ticket.UserID)

	for _, action := range []Action{ActionApprove, ActionReject, ActionMarkPaid, ActionWritePins} {
		if !Can(owner, action, &ticket) {
			t.Fatalf("owner must be allowed to %s", action)
		}
		if !Can(ownerDevice, action, &ticket) {
			t.Fatalf("owner's device must carry the same authority for %s", action)
		}
		if Can(other, action, &ticket) {
			t.Fatalf("non-owner must be denied %s", action)
		}
		if Can(PublicActor(), action, &ticket) {
			t.Fatalf("public must be denied %s", action)
		}
		if Can(GuestActor("g"), action, &ticket) {
			t.Fatalf("guest must be denied %s", action)
		}
		if Can(owner, action, nil) {
			t.Fatalf("%s without a ticket must be denied", action)
		}
	}
}

func TestPolicyView(t *testing.T) {
	ticket := testTicket(TicketStatusApproved)

	if !Can(UserActor(ticket.UserID), ActionView, &ticket) {
		t.Fatal("owner must be allowed to view")
	}
	if Can(UserActor("usr_other"), ActionView, &ticket) {
		t.Fatal("non-owner user must be denied view")
	}
	if !Can(DeviceActor("dev_01", ticket.UserID), ActionView, &ticket) {
		t.Fatal("owner's device must be allowed to view")
	}
	// Public view is possession-based: the unguessable public id lookup is
	// the real gate, so once the ticket is in hand policy allows it.
	if !Can(PublicActor(), ActionView, &ticket) {
		t.Fatal("public must be allowed to view a fetched ticket")
	}
	if Can(GuestActor("g"), ActionView, &ticket) {
		t.Fatal("guest must be denied view")
	}
}

func TestPolicyIgnoresStatus(t *testing.T) {
	owner := UserActor("usr_01")
	for _, status := range []TicketStatus{TicketStatusPending, TicketStatusApproved, TicketStatusPaid, TicketStatusRejected} {
		ticket := testTicket(status)
		if !Can(owner, ActionApprove, &ticket) {
			t.Fatalf("policy must not depend on status, denied at %s", status)
		}
	}
}

func TestAuthorizeReturnsForbidden(t *testing.T) {
	ticket := testTicket(TicketStatusPending)
	err := Authorize(UserActor("usr_other"), ActionApprove, &ticket)
	if CodeOf(err) != CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := Authorize(UserActor(ticket.UserID), ActionApprove, &ticket); err != nil {
		t.Fatalf("owner must pass, got %v", err)
	}
}

func TestPolicyUnknownAction(t *testing.T) {
	ticket := testTicket(TicketStatusPending)
	if Can(UserActor(ticket.UserID), Action("transfer"), &ticket) {
		t.Fatal("unknown actions must default to deny")
	}
}
