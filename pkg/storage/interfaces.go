package storage

import "github.com/skyrent/fleetlink/pkg/model"

// Interface is implemented by the storage
type Interface interface {
	Drones() DroneStore
	Orders() OrderStore
	Measurements() MeasurementStore
}

// DroneStore is responsible for managing the Drone model
type DroneStore interface {
	FetchAll() (map[int64]model.Drone, error)
	FindByDeviceID(deviceID string) (*model.Drone, error)
	Create(m *model.Drone) error
	UpdateStatus(deviceID string, status model.DroneStatus) error
	// UpdateStatusIf transitions the drone status only when the stored
	// status equals from. It reports whether a row was changed, which
	// makes the check-and-set race free across concurrent handshakes.
	UpdateStatusIf(deviceID string, from, to model.DroneStatus) (bool, error)
}

// OrderStore is responsible for managing the DroneOrder model
type OrderStore interface {
	FindByID(id int64) (*model.DroneOrder, error)
	Create(m *model.DroneOrder) error
	UpdateStatus(id int64, status model.DroneOrderStatus) error
	// CompleteOrder applies an acknowledged order status together with
	// the implied drone status in a single transaction. If either row
	// is missing the whole transaction is rolled back and ErrNotFound
	// is returned.
	CompleteOrder(id int64, status model.DroneOrderStatus, deviceID string, droneStatus model.DroneStatus) error
}

// MeasurementStore is responsible for managing the DroneMeasurement model
type MeasurementStore interface {
	FetchByDeviceID(deviceID string) ([]model.DroneMeasurement, error)
	Create(m *model.DroneMeasurement) error
}
