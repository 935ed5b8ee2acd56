package model

import "time"

// DroneMeasurement is an append-only telemetry sample. Rows are never
// updated or deleted once written.
type DroneMeasurement struct {
	ID            int64
	DeviceID      string
	Status        DroneRealtimeStatus
	BatteryPower  float64
	Longitude     float64
	Latitude      float64
	BatteryCharge float64

	CreatedAt time.Time
}
