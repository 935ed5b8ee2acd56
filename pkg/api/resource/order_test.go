package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrent/fleetlink/pkg/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestValidateOrderAcceptsMoveToLocation(t *testing.T) {
	m, err := ValidateOrder(&OrderResource{
		DeviceID:  "D1",
		UserID:    7,
		Action:    "MOVE_TO_LOCATION",
		Longitude: floatPtr(13.4),
		Latitude:  floatPtr(52.52),
	})
	require.NoError(t, err)
	assert.Equal(t, "D1", m.DeviceID)
	assert.Equal(t, model.ActionMoveToLocation, m.Action)
	assert.Equal(t, 13.4, *m.Longitude)
	assert.Equal(t, 52.52, *m.Latitude)
}

func TestValidateOrderAcceptsCargoActionWithoutCoordinates(t *testing.T) {
	m, err := ValidateOrder(&OrderResource{
		DeviceID: "D1",
		Action:   "TAKE_CARGO",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ActionTakeCargo, m.Action)
	assert.Nil(t, m.Longitude)
	assert.Nil(t, m.Latitude)
}

func TestValidateOrderRejections(t *testing.T) {
	cases := []struct {
		name string
		in   *OrderResource
	}{
		{"missing device id", &OrderResource{Action: "STOP_AND_WAIT"}},
		{"unknown action", &OrderResource{DeviceID: "D1", Action: "SELF_DESTRUCT"}},
		{"move without coordinates", &OrderResource{DeviceID: "D1", Action: "MOVE_TO_LOCATION"}},
		{"move without latitude", &OrderResource{DeviceID: "D1", Action: "MOVE_TO_LOCATION", Longitude: floatPtr(13.4)}},
		{"longitude out of range", &OrderResource{DeviceID: "D1", Action: "MOVE_TO_LOCATION", Longitude: floatPtr(180.5), Latitude: floatPtr(52.52)}},
		{"latitude out of range", &OrderResource{DeviceID: "D1", Action: "MOVE_TO_LOCATION", Longitude: floatPtr(13.4), Latitude: floatPtr(-90.5)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ValidateOrder(tc.in)
			assert.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestNewOrderOmitsZeroTimestamps(t *testing.T) {
	out := NewOrder(&model.DroneOrder{ID: 1, DeviceID: "D1", Action: model.ActionStopAndWait, Status: model.OrderStatusEnqueued})
	assert.Nil(t, out.CreatedAt)
	assert.Nil(t, out.UpdatedAt)
	assert.Equal(t, "ENQUEUED", out.Status)
}
