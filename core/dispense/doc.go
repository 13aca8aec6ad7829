// Package dispense drives the dispensing mechanism: it maps a requested
// color to a mechanism angle, runs the move, beep, settle and verify
// sequence, reports the outcome to the shadow and returns home. Commands
// carrying a non-zero id are executed at most once per process lifetime.
package dispense
