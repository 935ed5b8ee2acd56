package memory

import "github.com/skyrent/fleetlink/pkg/storage"

// store contains all memory-based sub-stores for managing the persistent models
type store struct {
	drones       *droneStore
	orders       *orderStore
	measurements *measurementStore
}

// NewStore creates a new memory-based Storage interface
func NewStore() storage.Interface {
	droneStore := newDroneStore()

	return &store{
		drones:       droneStore,
		orders:       newOrderStore(droneStore),
		measurements: newMeasurementStore(),
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
