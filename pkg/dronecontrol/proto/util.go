package proto

import "fmt"

func MustPingMessage(v interface{}) (*PingMessage, error) {
	msg, ok := v.(PingMessage)
	if !ok {
		return nil, fmt.Errorf("not a ping message")
	}

	return &msg, nil
}

func MustTelemetryMessage(v interface{}) (*TelemetryMessage, error) {
	msg, ok := v.(TelemetryMessage)
	if !ok {
		return nil, fmt.Errorf("not a telemetry message")
	}

	return &msg, nil
}

func MustOrderResultMessage(v interface{}) (*OrderResultMessage, error) {
	msg, ok := v.(OrderResultMessage)
	if !ok {
		return nil, fmt.Errorf("not an order result message")
	}

	return &msg, nil
}
