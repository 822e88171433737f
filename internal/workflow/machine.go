// Package workflow drives an order through its lifecycle. One state machine is
// shared by the customer and admin views; the role of the signed-in user
// decides which actions are offered and accepted.
package workflow

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/session"
)

// Role is the side of the console acting on an order.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// RoleOf maps a session onto a workflow role.
func RoleOf(s *session.Session) Role {
	if s.IsAdmin() {
		return RoleAdmin
	}
	return RoleCustomer
}

// Action is a user-triggered operation on an order.
type Action string

const (
	ActionConfirmPayment Action = "confirm_payment"
	ActionVerifyPayment  Action = "verify_payment"
	ActionSendReceipt    Action = "send_receipt"
)

// edge is one forward step of the lifecycle and the role allowed to take it.
type edge struct {
	from, to models.OrderStatus
	role     Role
}

// on delivery -> delivered is part of the lifecycle but no action takes it.
var edges = []edge{
	{models.StatusPending, models.StatusPaid, RoleCustomer},
	{models.StatusPaid, models.StatusOnDelivery, RoleAdmin},
	{models.StatusOnDelivery, models.StatusDelivered, RoleAdmin},
}

type rule struct {
	status models.OrderStatus
	role   Role
	action Action
	next   models.OrderStatus
}

var rules = []rule{
	{models.StatusPending, RoleCustomer, ActionConfirmPayment, models.StatusPaid},
	{models.StatusPaid, RoleAdmin, ActionVerifyPayment, models.StatusOnDelivery},
	{models.StatusOnDelivery, RoleAdmin, ActionSendReceipt, models.StatusOnDelivery},
}

// Actions returns the actions enabled for an order in status when viewed by role.
func Actions(status models.OrderStatus, role Role) []Action {
	out := []Action{}
	for _, r := range rules {
		if r.status == status && r.role == role {
			out = append(out, r.action)
		}
	}
	return out
}

// Advance checks a status change. Only the immediate successor may be reached,
// and only by the role owning that edge.
func Advance(from, to models.OrderStatus, role Role) error {
	for _, e := range edges {
		if e.from == from && e.to == to {
			if e.role != role {
				return fmt.Errorf("%w: %s cannot move an order from %q to %q", ErrTransitionNotAllowed, role, from, to)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %q to %q", ErrTransitionNotAllowed, from, to)
}

// Permit checks that role may run action on an order in status and returns the
// status the order ends up in.
func Permit(status models.OrderStatus, role Role, action Action) (models.OrderStatus, error) {
	for _, r := range rules {
		if r.action != action || r.status != status || r.role != role {
			continue
		}
		if r.next != status {
			if err := Advance(status, r.next, role); err != nil {
				return "", err
			}
		}
		return r.next, nil
	}
	return "", fmt.Errorf("%w: %s is not available to %s on a %q order", ErrTransitionNotAllowed, action, role, status)
}
