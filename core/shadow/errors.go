package shadow

import "errors"

var (
	// ErrDecode wraps every malformed or schema mismatched inbound payload.
	ErrDecode = errors.New("shadow: decode")
	// ErrPayloadTooLarge is returned when an encoded report exceeds MaxPayloadBytes.
	ErrPayloadTooLarge = errors.New("shadow: payload too large")
	// ErrUnknownAction is returned for command actions other than dispense.
	ErrUnknownAction = errors.New("shadow: unknown action")
	// ErrMissingColor is returned for dispense commands without a color.
	ErrMissingColor = errors.New("shadow: dispense command missing color")
	// ErrUnroutable is returned by Deliver for topics outside the thing's set.
	ErrUnroutable = errors.New("shadow: unroutable topic")
)
