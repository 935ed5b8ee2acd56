package controlchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrent/fleetlink/pkg/model"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("conn-1", "D1", model.Drone{DeviceID: "D1", Status: model.StatusIdle}))

	deviceID, ok := r.DeviceID("conn-1")
	require.True(t, ok)
	assert.Equal(t, "D1", deviceID)

	connID, ok := r.ConnID("D1")
	require.True(t, ok)
	assert.Equal(t, "conn-1", connID)

	snapshot, ok := r.Snapshot("D1")
	require.True(t, ok)
	assert.Equal(t, model.StatusIdle, snapshot.Status)

	assert.Equal(t, 1, r.Size())
}

func TestRegistryRefusesSecondSessionPerDevice(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("conn-1", "D1", model.Drone{DeviceID: "D1"}))
	err := r.Register("conn-2", "D1", model.Drone{DeviceID: "D1"})
	require.Error(t, err)

	// The original binding is untouched.
	connID, ok := r.ConnID("D1")
	require.True(t, ok)
	assert.Equal(t, "conn-1", connID)
	assert.Equal(t, 1, r.Size())
}

func TestRegistryRemoveClearsBothDirections(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("conn-1", "D1", model.Drone{DeviceID: "D1"}))
	r.Remove("conn-1")

	_, ok := r.DeviceID("conn-1")
	assert.False(t, ok)
	_, ok = r.ConnID("D1")
	assert.False(t, ok)
	_, ok = r.Snapshot("D1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Size())
}

func TestRegistryRemoveUnknownConnIsNoop(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("conn-1", "D1", model.Drone{DeviceID: "D1"}))
	r.Remove("conn-unknown")

	assert.Equal(t, 1, r.Size())
}
