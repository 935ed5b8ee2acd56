package proto

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Order ids travel as decimal strings. Anything else is an envelope
// violation and terminates the channel.
var orderIDPattern = regexp.MustCompile(`^\d{1,19}$`)

func unmarshalMessageType(v interface{}) (MessageType, error) {
	msgTypes := map[int]MessageType{
		2:  MessageTypeWelcome,
		3:  MessageTypeAbort,
		4:  MessageTypePing,
		5:  MessageTypePong,
		10: MessageTypeOrder,
		11: MessageTypeOrderResult,
		20: MessageTypeTelemetry}

	i, ok := v.(float64)
	if !ok {
		return MessageTypeInvalid, fmt.Errorf("dronecontrol: invalid message type given")
	}

	msgType, ok := msgTypes[int(i)]
	if !ok {
		return MessageTypeInvalid, fmt.Errorf("dronecontrol: unknown message type given")
	}

	return msgType, nil
}

func UnmarshalMessage(data []byte) (MessageType, interface{}, error) {
	var envelope []interface{}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("dronecontrol: invalid message data: %s", err.Error())
	}

	if len(envelope) < 1 {
		return MessageTypeInvalid, nil, fmt.Errorf("dronecontrol: message does not contain a message type")
	}

	msgType, err := unmarshalMessageType(envelope[0])
	if err != nil {
		return msgType, nil, err
	}

	switch msgType {
	case MessageTypePing:
		return unmarshalPingMessage(envelope)
	case MessageTypeTelemetry:
		return unmarshalTelemetryMessage(envelope)
	case MessageTypeOrderResult:
		return unmarshalOrderResultMessage(envelope)
	}

	// Welcome, abort, pong and order frames are outbound only; a drone
	// must never send them.
	return MessageTypeInvalid, nil, fmt.Errorf("dronecontrol: unexpected %s message from client", msgType)
}

func unmarshalPingMessage(envelope []interface{}) (MessageType, interface{}, error) {
	var details interface{}
	if len(envelope) >= 2 {
		details = envelope[1]
	}

	return MessageTypePing, PingMessage{
		Details: details,
	}, nil
}

func unmarshalTelemetryMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 2 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete telemetry message")
	}

	// A non-object payload yields an empty value set which the ingress
	// handler drops silently, keeping the connection alive.
	values, _ := envelope[1].(map[string]interface{})

	return MessageTypeTelemetry, TelemetryMessage{
		Values: values,
	}, nil
}

func unmarshalOrderResultMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 3 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete order result message")
	}

	orderID, ok := envelope[1].(string)
	if !ok || !orderIDPattern.MatchString(orderID) {
		return MessageTypeInvalid, nil, fmt.Errorf("order result message contains invalid order ID")
	}

	status, ok := envelope[2].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("order result message contains invalid status type")
	}

	return MessageTypeOrderResult, OrderResultMessage{
		OrderID: orderID,
		Status:  status,
	}, nil
}
