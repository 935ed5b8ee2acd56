package model

import "time"

// DroneStatus is the persisted lifecycle state of a drone. It is the
// single source of truth for whether a control channel may be opened
// (StatusOffline required) and whether the drone may receive orders.
type DroneStatus string

const (
	StatusUnauthorized DroneStatus = "UNAUTHORIZED"
	StatusOffline      DroneStatus = "OFFLINE"
	StatusIdle         DroneStatus = "IDLE"
	StatusWorking      DroneStatus = "WORKING"
)

// KnownDroneStatus reports whether s is a recognized drone status value.
func KnownDroneStatus(s DroneStatus) bool {
	switch s {
	case StatusUnauthorized, StatusOffline, StatusIdle, StatusWorking:
		return true
	}
	return false
}

// DroneRealtimeStatus is the status value a drone reports inside a
// telemetry sample. It is independent of the persisted DroneStatus.
type DroneRealtimeStatus int

const (
	RealtimeStatusGrounded DroneRealtimeStatus = 1
	RealtimeStatusFlying   DroneRealtimeStatus = 2
	RealtimeStatusCharging DroneRealtimeStatus = 3
	RealtimeStatusAlarm    DroneRealtimeStatus = 4
)

// KnownRealtimeStatus reports whether s is a recognized realtime status.
func KnownRealtimeStatus(s DroneRealtimeStatus) bool {
	return s >= RealtimeStatusGrounded && s <= RealtimeStatusAlarm
}

// Drone is a model of the persistency layer
type Drone struct {
	ID           int64
	DeviceID     string
	OwnerID      int64
	Name         string
	Status       DroneStatus
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
