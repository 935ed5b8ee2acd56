package resource

import (
	"fmt"
	"time"

	"github.com/skyrent/fleetlink/pkg/model"
)

type OrderResource struct {
	ID        int64      `json:"id"`
	DeviceID  string     `json:"deviceId"`
	UserID    int64      `json:"userId"`
	Action    string     `json:"action"`
	Longitude *float64   `json:"longitude,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func NewOrder(m *model.DroneOrder) (out *OrderResource) {
	out = &OrderResource{
		ID:        m.ID,
		DeviceID:  m.DeviceID,
		UserID:    m.UserID,
		Action:    string(m.Action),
		Longitude: m.Longitude,
		Latitude:  m.Latitude,
		Status:    string(m.Status),
	}

	if !m.CreatedAt.IsZero() {
		out.CreatedAt = &time.Time{}
		*out.CreatedAt = m.CreatedAt.Round(time.Second)
	}
	if !m.UpdatedAt.IsZero() {
		out.UpdatedAt = &time.Time{}
		*out.UpdatedAt = m.UpdatedAt.Round(time.Second)
	}

	return // out
}

func ValidateOrder(r *OrderResource) (m *model.DroneOrder, err error) {
	if r.DeviceID == "" {
		return nil, fmt.Errorf("deviceId is required")
	}
	if !model.KnownOrderAction(model.DroneOrderAction(r.Action)) {
		return nil, fmt.Errorf("action '%s' is not recognized", r.Action)
	}

	if model.DroneOrderAction(r.Action) == model.ActionMoveToLocation {
		if r.Longitude == nil || r.Latitude == nil {
			return nil, fmt.Errorf("longitude and latitude are required for %s", r.Action)
		}
		if *r.Longitude < -180 || *r.Longitude > 180 {
			return nil, fmt.Errorf("longitude is out of range")
		}
		if *r.Latitude < -90 || *r.Latitude > 90 {
			return nil, fmt.Errorf("latitude is out of range")
		}
	}

	m = &model.DroneOrder{
		DeviceID:  r.DeviceID,
		UserID:    r.UserID,
		Action:    model.DroneOrderAction(r.Action),
		Longitude: r.Longitude,
		Latitude:  r.Latitude,
	}

	return m, nil
}
