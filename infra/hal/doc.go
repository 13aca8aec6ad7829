// Package hal provides software implementations of the device hardware: a
// stepping servo, a timed buzzer, a frequency based color sensor and a host
// network monitor. The simulated parts stand in for the board drivers on a
// workstation and in tests.
package hal
