package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/skyrent/fleetlink/pkg/model"
)

const (
	subjectDroneStatus = "fleetlink.v1.events.dronestatus"
	subjectOrderStatus = "fleetlink.v1.events.orderstatus"
)

// Publisher emits fleet events to NATS. A Publisher with a nil
// connection is valid and publishes nothing, so the core runs without a
// broker.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

type droneStatusEvent struct {
	DeviceID  string    `json:"device_id"`
	Status    string    `json:"status"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

type orderStatusEvent struct {
	OrderID   int64     `json:"order_id"`
	DeviceID  string    `json:"device_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishDroneStatus announces a drone lifecycle transition.
func (p *Publisher) PublishDroneStatus(deviceID string, status model.DroneStatus, sessionID string) error {
	if p == nil || p.nc == nil {
		return nil
	}

	data, err := json.Marshal(&droneStatusEvent{
		DeviceID:  deviceID,
		Status:    string(status),
		SessionID: sessionID,
		Timestamp: time.Now().Round(time.Second).UTC(),
	})
	if err != nil {
		return err
	}

	return p.nc.Publish(subjectDroneStatus, data)
}

// PublishOrderStatus announces an acknowledged order status.
func (p *Publisher) PublishOrderStatus(orderID int64, deviceID string, status model.DroneOrderStatus) error {
	if p == nil || p.nc == nil {
		return nil
	}

	data, err := json.Marshal(&orderStatusEvent{
		OrderID:   orderID,
		DeviceID:  deviceID,
		Status:    string(status),
		Timestamp: time.Now().Round(time.Second).UTC(),
	})
	if err != nil {
		return err
	}

	return p.nc.Publish(subjectOrderStatus, data)
}
