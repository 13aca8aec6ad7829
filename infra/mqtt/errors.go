package mqtt

import "errors"

var (
	// ErrNotConnected is returned when publishing without a session.
	ErrNotConnected = errors.New("mqtt: not connected")
	// ErrPublishTimeout is returned when the broker did not confirm a publish in time.
	ErrPublishTimeout = errors.New("mqtt: publish timeout")
	// ErrConnectTimeout is returned when a connect attempt did not complete in time.
	ErrConnectTimeout = errors.New("mqtt: connect timeout")
	// ErrConnectionLost marks a transition caused by a dropped connection.
	ErrConnectionLost = errors.New("mqtt: connection lost")
)
