package controlchannel

import (
	"fmt"
	"sync"

	"github.com/skyrent/fleetlink/pkg/model"
)

// Registry keeps the live bidirectional mapping between transport
// connection ids and device ids, plus the last-known drone snapshot per
// connected device. It is pure bookkeeping: authorization happens in the
// handshake before Register is called.
type Registry struct {
	sync.RWMutex
	deviceByConn map[string]string
	connByDevice map[string]string
	snapshots    map[string]model.Drone
}

func NewRegistry() *Registry {
	return &Registry{
		deviceByConn: make(map[string]string),
		connByDevice: make(map[string]string),
		snapshots:    make(map[string]model.Drone),
	}
}

// Register binds connID and deviceID in both directions. A device that
// is already bound to a different connection is refused, which keeps the
// at-most-one-session-per-device invariant.
func (r *Registry) Register(connID, deviceID string, snapshot model.Drone) error {
	r.Lock()
	defer r.Unlock()

	if existing, ok := r.connByDevice[deviceID]; ok && existing != connID {
		return fmt.Errorf("device '%s' has an active session already", deviceID)
	}

	if prevDevice, ok := r.deviceByConn[connID]; ok && prevDevice != deviceID {
		delete(r.connByDevice, prevDevice)
		delete(r.snapshots, prevDevice)
	}

	r.deviceByConn[connID] = deviceID
	r.connByDevice[deviceID] = connID
	r.snapshots[deviceID] = snapshot

	return nil
}

// DeviceID resolves the device bound to a connection.
func (r *Registry) DeviceID(connID string) (string, bool) {
	r.RLock()
	defer r.RUnlock()

	deviceID, ok := r.deviceByConn[connID]
	return deviceID, ok
}

// ConnID resolves the connection bound to a device.
func (r *Registry) ConnID(deviceID string) (string, bool) {
	r.RLock()
	defer r.RUnlock()

	connID, ok := r.connByDevice[deviceID]
	return connID, ok
}

// Snapshot returns the cached drone snapshot for a connected device.
func (r *Registry) Snapshot(deviceID string) (*model.Drone, bool) {
	r.RLock()
	defer r.RUnlock()

	m, ok := r.snapshots[deviceID]
	if !ok {
		return nil, false
	}
	return &m, true
}

// Remove clears both directions and the snapshot under one lock, so no
// half-removed session is ever observable.
func (r *Registry) Remove(connID string) {
	r.Lock()
	defer r.Unlock()

	deviceID, ok := r.deviceByConn[connID]
	if !ok {
		return
	}

	delete(r.deviceByConn, connID)
	delete(r.connByDevice, deviceID)
	delete(r.snapshots, deviceID)
}

// Size reports the number of live sessions.
func (r *Registry) Size() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.deviceByConn)
}
