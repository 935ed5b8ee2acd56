package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalPingMessage(t *testing.T) {
	msgType, msg, err := UnmarshalMessage([]byte(`[4, {"note": "still alive"}]`))
	require.NoError(t, err)
	assert.Equal(t, MessageTypePing, msgType)

	ping, ok := msg.(PingMessage)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"note": "still alive"}, ping.Details)
}

func TestUnmarshalPingMessageWithoutDetails(t *testing.T) {
	msgType, msg, err := UnmarshalMessage([]byte(`[4]`))
	require.NoError(t, err)
	assert.Equal(t, MessageTypePing, msgType)

	ping, ok := msg.(PingMessage)
	require.True(t, ok)
	assert.Nil(t, ping.Details)
}

func TestUnmarshalTelemetryMessage(t *testing.T) {
	msgType, msg, err := UnmarshalMessage([]byte(`[20, {"status": 2, "batteryPower": 4200}]`))
	require.NoError(t, err)
	assert.Equal(t, MessageTypeTelemetry, msgType)

	telemetry, ok := msg.(TelemetryMessage)
	require.True(t, ok)
	assert.Equal(t, float64(2), telemetry.Values["status"])
}

func TestUnmarshalTelemetryMessageKeepsNonObjectPayload(t *testing.T) {
	// A scalar payload decodes to an empty value set rather than an
	// error so that the ingress handler can drop it without killing the
	// connection.
	msgType, msg, err := UnmarshalMessage([]byte(`[20, "bogus"]`))
	require.NoError(t, err)
	assert.Equal(t, MessageTypeTelemetry, msgType)

	telemetry, ok := msg.(TelemetryMessage)
	require.True(t, ok)
	assert.Nil(t, telemetry.Values)
}

func TestUnmarshalOrderResultMessage(t *testing.T) {
	msgType, msg, err := UnmarshalMessage([]byte(`[11, "42", "DONE"]`))
	require.NoError(t, err)
	assert.Equal(t, MessageTypeOrderResult, msgType)

	result, ok := msg.(OrderResultMessage)
	require.True(t, ok)
	assert.Equal(t, "42", result.OrderID)
	assert.Equal(t, "DONE", result.Status)
}

func TestUnmarshalMessageRejectsMalformedEnvelopes(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `garbage`},
		{"not an array", `{"type": 4}`},
		{"empty envelope", `[]`},
		{"non numeric type", `["PING"]`},
		{"unknown type", `[99]`},
		{"telemetry without payload", `[20]`},
		{"order result without status", `[11, "42"]`},
		{"order result numeric id", `[11, 42, "DONE"]`},
		{"order result non decimal id", `[11, "42x", "DONE"]`},
		{"order result oversized id", `[11, "12345678901234567890", "DONE"]`},
		{"order result non string status", `[11, "42", 7]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msgType, _, err := UnmarshalMessage([]byte(tc.data))
			assert.Error(t, err)
			assert.Equal(t, MessageTypeInvalid, msgType)
		})
	}
}

func TestUnmarshalMessageRejectsServerOnlyFrames(t *testing.T) {
	for _, data := range []string{
		`[2, "sess-1", {}]`,
		`[3, "SERVER", {}]`,
		`[5, {}]`,
		`[10, "42", {"action": "STOP_AND_WAIT"}]`,
	} {
		_, _, err := UnmarshalMessage([]byte(data))
		assert.Error(t, err, "frame %s must be refused from a client", data)
	}
}

func TestMarshalNewWelcomeMessage(t *testing.T) {
	out, err := MarshalNewWelcomeMessage("sess-1", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[2, "sess-1", {}]`, string(out))
}

func TestMarshalNewAbortMessage(t *testing.T) {
	out, err := MarshalNewAbortMessage("AUTH_BAD", map[string]interface{}{"message": "bad credentials"})
	require.NoError(t, err)
	assert.JSONEq(t, `[3, "AUTH_BAD", {"message": "bad credentials"}]`, string(out))
}

func TestMarshalNewOrderMessage(t *testing.T) {
	out, err := MarshalNewOrderMessage("42", map[string]interface{}{
		"action":    "MOVE_TO_LOCATION",
		"longitude": 13.4,
		"latitude":  52.52,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[10, "42", {"action": "MOVE_TO_LOCATION", "longitude": 13.4, "latitude": 52.52}]`, string(out))
}

func TestMarshalNewPongMessage(t *testing.T) {
	out, err := MarshalNewPongMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `[5, {}]`, string(out))
}
