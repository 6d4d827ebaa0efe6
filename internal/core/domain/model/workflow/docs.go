// Package workflow provides the per-order workflow ledger: an append-only
// history of fulfillment steps plus the wait tokens the external
// orchestration parks while it waits for human action.
//
// The ledger mirrors the order's status at every transition and enforces
// that at most one step is open at a time. Tokens are stored per stage and
// consumed exactly once; resuming a stage whose token is gone is reported
// as stale so callers can treat it as a logged no-op.
package workflow
