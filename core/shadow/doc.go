// Package shadow defines the device shadow protocol: topic layout, payload
// codec and the contracts between the transport session and the components
// that consume or produce shadow traffic.
//
// The session routes inbound messages to a Handler and exposes outbound
// reports through a Reporter. Payloads are compact JSON documents bounded
// by MaxPayloadBytes.
package shadow
