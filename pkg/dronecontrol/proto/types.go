package proto

type MessageType int

const (
	MessageTypeInvalid     MessageType = 0
	MessageTypeWelcome     MessageType = 2
	MessageTypeAbort       MessageType = 3
	MessageTypePing        MessageType = 4
	MessageTypePong        MessageType = 5
	MessageTypeOrder       MessageType = 10
	MessageTypeOrderResult MessageType = 11
	MessageTypeTelemetry   MessageType = 20
)

func (msgType MessageType) String() string {
	names := map[MessageType]string{
		MessageTypeWelcome:     "WELCOME",
		MessageTypeAbort:       "ABORT",
		MessageTypePing:        "PING",
		MessageTypePong:        "PONG",
		MessageTypeOrder:       "ORDER",
		MessageTypeOrderResult: "ORDER_RESULT",
		MessageTypeTelemetry:   "TELEMETRY"}

	msgTypeName, ok := names[msgType]
	if !ok {
		return ""
	}

	return msgTypeName
}

// WelcomeMessage admits a drone after a successful handshake.
type WelcomeMessage struct {
	SessionID string
	Details   interface{}
}

// AbortMessage rejects a handshake with a structured reason.
type AbortMessage struct {
	Reason  string
	Details interface{}
}

type PingMessage struct {
	Details interface{}
}

type PongMessage struct {
	Details interface{}
}

// OrderMessage carries a dispatched order to the drone. The order id
// travels as its decimal string form.
type OrderMessage struct {
	OrderID   string
	Arguments interface{}
}

// OrderResultMessage is the single acknowledgement a drone sends back
// for a dispatched order.
type OrderResultMessage struct {
	OrderID string
	Status  string
}

// TelemetryMessage carries one measurement sample. The payload is kept
// untyped; field validation is the ingress handler's concern because
// malformed telemetry is dropped, not answered.
type TelemetryMessage struct {
	Values map[string]interface{}
}
