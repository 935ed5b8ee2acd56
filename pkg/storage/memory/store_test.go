package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrent/fleetlink/pkg/model"
	"github.com/skyrent/fleetlink/pkg/storage"
)

func newStoreWithDrone(t *testing.T, deviceID string, status model.DroneStatus) storage.Interface {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Drones().Create(&model.Drone{
		DeviceID: deviceID,
		OwnerID:  1,
		Name:     "test drone",
		Status:   status,
	}))
	return s
}

func TestDroneStoreUpdateStatusIf(t *testing.T) {
	s := newStoreWithDrone(t, "D1", model.StatusOffline)

	ok, err := s.Drones().UpdateStatusIf("D1", model.StatusOffline, model.StatusIdle)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second conditional update from the same precondition loses.
	ok, err = s.Drones().UpdateStatusIf("D1", model.StatusOffline, model.StatusIdle)
	require.NoError(t, err)
	assert.False(t, ok)

	d, err := s.Drones().FindByDeviceID("D1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusIdle, d.Status)
}

func TestDroneStoreUpdateStatusIfUnknownDevice(t *testing.T) {
	s := NewStore()

	ok, err := s.Drones().UpdateStatusIf("nope", model.StatusOffline, model.StatusIdle)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderStoreCompleteOrder(t *testing.T) {
	s := newStoreWithDrone(t, "D1", model.StatusWorking)

	order := &model.DroneOrder{DeviceID: "D1", UserID: 1, Action: model.ActionTakeCargo, Status: model.OrderStatusEnqueued}
	require.NoError(t, s.Orders().Create(order))

	err := s.Orders().CompleteOrder(order.ID, model.OrderStatusDone, "D1", model.StatusIdle)
	require.NoError(t, err)

	stored, err := s.Orders().FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDone, stored.Status)

	d, err := s.Drones().FindByDeviceID("D1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusIdle, d.Status)
}

func TestOrderStoreCompleteOrderIsAllOrNothing(t *testing.T) {
	s := newStoreWithDrone(t, "D1", model.StatusWorking)

	order := &model.DroneOrder{DeviceID: "D1", UserID: 1, Action: model.ActionTakeCargo, Status: model.OrderStatusEnqueued}
	require.NoError(t, s.Orders().Create(order))

	t.Run("unknown order leaves drone untouched", func(t *testing.T) {
		err := s.Orders().CompleteOrder(999, model.OrderStatusDone, "D1", model.StatusIdle)
		assert.Equal(t, storage.ErrNotFound, err)

		d, err := s.Drones().FindByDeviceID("D1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusWorking, d.Status)
	})

	t.Run("unknown drone leaves order untouched", func(t *testing.T) {
		err := s.Orders().CompleteOrder(order.ID, model.OrderStatusDone, "nope", model.StatusIdle)
		assert.Equal(t, storage.ErrNotFound, err)

		stored, err := s.Orders().FindByID(order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusEnqueued, stored.Status)
	})
}

func TestMeasurementStoreFetchFiltersByDevice(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Measurements().Create(&model.DroneMeasurement{DeviceID: "D1", Status: model.RealtimeStatusGrounded}))
	require.NoError(t, s.Measurements().Create(&model.DroneMeasurement{DeviceID: "D2", Status: model.RealtimeStatusFlying}))
	require.NoError(t, s.Measurements().Create(&model.DroneMeasurement{DeviceID: "D1", Status: model.RealtimeStatusFlying}))

	rows, err := s.Measurements().FetchByDeviceID("D1")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, m := range rows {
		assert.Equal(t, "D1", m.DeviceID)
	}
}
