package controlchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrent/fleetlink/pkg/model"
)

func validTelemetry() map[string]interface{} {
	return map[string]interface{}{
		"status":        float64(model.RealtimeStatusFlying),
		"batteryPower":  4200.0,
		"longitude":     13.40,
		"latitude":      52.52,
		"batteryCharge": 87.5,
	}
}

func TestHandleTelemetryPersistsValidSample(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	cc := connectDrone(t, ctrl, "D1", "secret")

	ctrl.HandleTelemetry(cc.ConnID(), validTelemetry())

	rows, err := store.Measurements().FetchByDeviceID("D1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "D1", rows[0].DeviceID)
	assert.Equal(t, model.RealtimeStatusFlying, rows[0].Status)
	assert.Equal(t, 52.52, rows[0].Latitude)
}

func TestHandleTelemetryDropsMalformedSamples(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	cc := connectDrone(t, ctrl, "D1", "secret")

	cases := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"nil values", nil},
		{"unknown status", func(v map[string]interface{}) { v["status"] = float64(99) }},
		{"non numeric status", func(v map[string]interface{}) { v["status"] = "FLYING" }},
		{"missing battery power", func(v map[string]interface{}) { delete(v, "batteryPower") }},
		{"longitude out of range", func(v map[string]interface{}) { v["longitude"] = 180.1 }},
		{"latitude above range", func(v map[string]interface{}) { v["latitude"] = 91.0 }},
		{"latitude below range", func(v map[string]interface{}) { v["latitude"] = -91.0 }},
		{"non numeric charge", func(v map[string]interface{}) { v["batteryCharge"] = true }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var values map[string]interface{}
			if tc.mutate != nil {
				values = validTelemetry()
				tc.mutate(values)
			}
			ctrl.HandleTelemetry(cc.ConnID(), values)
		})
	}

	rows, err := store.Measurements().FetchByDeviceID("D1")
	require.NoError(t, err)
	assert.Empty(t, rows, "malformed samples must not be persisted")
}

func TestHandleTelemetryDropsUnregisteredConnection(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)

	ctrl.HandleTelemetry("no-such-conn", validTelemetry())

	rows, err := store.Measurements().FetchByDeviceID("D1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
