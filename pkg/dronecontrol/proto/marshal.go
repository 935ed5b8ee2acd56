package proto

import "encoding/json"

func (m WelcomeMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeWelcome)
	envelope[1] = m.SessionID
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m AbortMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeAbort)
	envelope[1] = m.Reason
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m PingMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypePing)
	envelope[1] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m PongMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypePong)
	envelope[1] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m OrderMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeOrder)
	envelope[1] = m.OrderID
	envelope[2] = ensureEmptyDictIfNil(m.Arguments)

	return json.Marshal(envelope)
}

func (m OrderResultMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeOrderResult)
	envelope[1] = m.OrderID
	envelope[2] = m.Status

	return json.Marshal(envelope)
}

func (m TelemetryMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypeTelemetry)
	envelope[1] = ensureEmptyDictIfNil(m.Values)

	return json.Marshal(envelope)
}

func MarshalNewWelcomeMessage(sessionID string, details interface{}) ([]byte, error) {
	m := WelcomeMessage{
		SessionID: sessionID,
		Details:   details,
	}
	return m.Marshal()
}

func MarshalNewAbortMessage(reason string, details interface{}) ([]byte, error) {
	m := AbortMessage{
		Reason:  reason,
		Details: details,
	}
	return m.Marshal()
}

func MarshalNewPongMessage() ([]byte, error) {
	m := PongMessage{}
	return m.Marshal()
}

func MarshalNewOrderMessage(orderID string, arguments interface{}) ([]byte, error) {
	m := OrderMessage{
		OrderID:   orderID,
		Arguments: arguments,
	}
	return m.Marshal()
}

func ensureEmptyDictIfNil(v interface{}) interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v
}
