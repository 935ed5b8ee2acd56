package controlchannel

import "fmt"

// Handshake rejection reasons surfaced to the connecting drone.
const (
	RejectReasonCredentials string = "DRONE_DEVICE_ID_PASSWORD"
	RejectReasonAuthBad     string = "AUTH_BAD"
	RejectReasonStatusBad   string = "DRONE_STATUS_BAD"
	RejectReasonServer      string = "SERVER"
)

// RejectionError refuses a drone handshake. The reason is sent to the
// peer inside the abort frame; internals never leak beyond it.
type RejectionError struct {
	Reason  string
	Details interface{}
}

func NewRejectionError(reason string, details interface{}) error {
	return &RejectionError{
		Reason:  reason,
		Details: details,
	}
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("handshake rejected: reason: %s", e.Reason)
}

func IsRejectionError(e error) bool {
	_, ok := e.(*RejectionError)
	return ok
}

type dispatchError string

func (e dispatchError) Error() string {
	return string(e)
}

// ErrDeviceNotConnected fails a dispatch for a device without a live
// session. No retry, no queueing.
const ErrDeviceNotConnected = dispatchError("no connected device")

// ErrAckTimeout fails a dispatch whose acknowledgement did not arrive
// within the configured bound.
const ErrAckTimeout = dispatchError("order acknowledgement timed out")

// ErrOrderPending refuses a second dispatch for an order that is still
// awaiting its acknowledgement.
const ErrOrderPending = dispatchError("order dispatch already pending")

// ProtocolViolationError fails a dispatch whose acknowledgement carried
// an unrecognized order status.
type ProtocolViolationError struct {
	Status string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation: unrecognized order status %q", e.Status)
}

func IsProtocolViolationError(e error) bool {
	_, ok := e.(*ProtocolViolationError)
	return ok
}
