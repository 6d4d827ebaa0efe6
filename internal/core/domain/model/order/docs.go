// Package order provides the domain entities and business logic for order
// fulfillment. It implements the Order aggregate root with lifecycle
// management, staff assignment and role-gated state transitions.
//
// The package includes:
//   - Order: the aggregate root managing identity, line items, assignments and lifecycle
//   - Status: a state machine enforcing the fulfillment workflow and per-role transition rights
//   - LineItem: a priced order position with exact decimal arithmetic
//   - Event: domain events raised by the aggregate and published after commit
//
// Key business rules:
//   - Status follows pending -> confirmed -> cooking -> packing -> ready ->
//     in_delivery -> delivered, with failed reachable from any non-terminal state
//   - in_delivery -> ready is the compensating transition for a canceled pickup
//   - chefs may request kitchen-side transitions, couriers delivery-side ones,
//     admins any, customers none
//   - only the assigned courier may complete or cancel a delivery
//   - the order total is always the exact sum of line item subtotals
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
