package model

import "time"

// DroneOrderAction is the command a user asks a drone to perform.
type DroneOrderAction string

const (
	ActionStopAndWait    DroneOrderAction = "STOP_AND_WAIT"
	ActionMoveToLocation DroneOrderAction = "MOVE_TO_LOCATION"
	ActionTakeCargo      DroneOrderAction = "TAKE_CARGO"
	ActionReleaseCargo   DroneOrderAction = "RELEASE_CARGO"
)

// KnownOrderAction reports whether a is a recognized order action.
func KnownOrderAction(a DroneOrderAction) bool {
	switch a {
	case ActionStopAndWait, ActionMoveToLocation, ActionTakeCargo, ActionReleaseCargo:
		return true
	}
	return false
}

// DroneOrderStatus is the progress of an order. A drone acknowledges a
// dispatched order with exactly one of these values.
type DroneOrderStatus string

const (
	OrderStatusStarted   DroneOrderStatus = "STARTED"
	OrderStatusError     DroneOrderStatus = "ERROR"
	OrderStatusEnqueued  DroneOrderStatus = "ENQUEUED"
	OrderStatusSkipped   DroneOrderStatus = "SKIPPED"
	OrderStatusDone      DroneOrderStatus = "DONE"
	OrderStatusTooFarGeo DroneOrderStatus = "TOO_FAR_GEO"
	OrderStatusHasLoad   DroneOrderStatus = "HAS_LOAD"
	OrderStatusHasNoLoad DroneOrderStatus = "HAS_NO_LOAD"
)

// KnownOrderStatus reports whether s is a recognized order status.
func KnownOrderStatus(s DroneOrderStatus) bool {
	switch s {
	case OrderStatusStarted, OrderStatusError, OrderStatusEnqueued,
		OrderStatusSkipped, OrderStatusDone, OrderStatusTooFarGeo,
		OrderStatusHasLoad, OrderStatusHasNoLoad:
		return true
	}
	return false
}

// DroneStatusAfterAck maps an acknowledged order status to the drone
// status it implies: terminal acknowledgements free the drone, busy
// acknowledgements keep it working.
func DroneStatusAfterAck(s DroneOrderStatus) DroneStatus {
	switch s {
	case OrderStatusEnqueued, OrderStatusStarted:
		return StatusWorking
	}
	return StatusIdle
}

// DroneOrder is a model of the persistency layer
type DroneOrder struct {
	ID        int64
	DeviceID  string
	UserID    int64
	Action    DroneOrderAction
	Longitude *float64
	Latitude  *float64
	Status    DroneOrderStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
