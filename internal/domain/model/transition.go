package model

import "fmt"

// TransitionAllowed reports whether moving an order from current to next is
// permitted for the given actor kind, with a human-readable reason when not.
//
// Staff may move an order between any states while it is not terminal; the
// system deliberately does not enforce forward-only ordering for staff so a
// mis-click can be corrected. Customers may only cancel, and only before the
// kitchen has started.
func TransitionAllowed(current, next OrderStatus, staff bool) (bool, string) {
	if !next.IsValid() {
		return false, fmt.Sprintf("unknown status %q", string(next))
	}
	if current.IsTerminal() {
		return false, fmt.Sprintf("order is already %s", string(current))
	}
	if next == current {
		return false, fmt.Sprintf("order is already %s", string(current))
	}
	if staff {
		return true, ""
	}
	if next != OrderStatusCancelled {
		return false, "customers may only cancel their orders"
	}
	if current != OrderStatusPending && current != OrderStatusAccepted {
		return false, "order is already being prepared and can no longer be cancelled"
	}
	return true, ""
}
