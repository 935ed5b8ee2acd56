package postgres

import (
	"github.com/jmoiron/sqlx"
	// PostgreSQL driver registration
	_ "github.com/lib/pq"

	"github.com/skyrent/fleetlink/pkg/storage"
)

// store contains all PostgreSQL based sub-stores for managing the models
type store struct {
	drones       *droneStore
	orders       *orderStore
	measurements *measurementStore
}

// NewStore creates a new PostgreSQL based Storage interface
func NewStore(db *sqlx.DB) storage.Interface {
	return &store{
		drones:       newDroneStore(db),
		orders:       newOrderStore(db),
		measurements: newMeasurementStore(db),
	}
}

// Drones returns a sub-store for managing the Drone model
func (s *store) Drones() storage.DroneStore {
	return s.drones
}

// Orders returns a sub-store for managing the DroneOrder model
func (s *store) Orders() storage.OrderStore {
	return s.orders
}

// Measurements returns a sub-store for managing the DroneMeasurement model
func (s *store) Measurements() storage.MeasurementStore {
	return s.measurements
}
