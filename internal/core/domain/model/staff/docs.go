// Package staff tracks the availability and load of assignable staff
// (chefs and couriers). The assignment processor selects the least loaded
// available member and flips it busy in the same transaction as the order
// update; completions release the member and increment its counter.
package staff
