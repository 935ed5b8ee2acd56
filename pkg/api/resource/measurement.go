package resource

import (
	"time"

	"github.com/skyrent/fleetlink/pkg/model"
)

type MeasurementResource struct {
	DeviceID      string    `json:"deviceId"`
	Status        int       `json:"status"`
	BatteryPower  float64   `json:"batteryPower"`
	Longitude     float64   `json:"longitude"`
	Latitude      float64   `json:"latitude"`
	BatteryCharge float64   `json:"batteryCharge"`
	CreatedAt     time.Time `json:"createdAt"`
}

type MeasurementListResource struct {
	Members []*MeasurementResource `json:"members"`
}

func NewMeasurement(m *model.DroneMeasurement) *MeasurementResource {
	return &MeasurementResource{
		DeviceID:      m.DeviceID,
		Status:        int(m.Status),
		BatteryPower:  m.BatteryPower,
		Longitude:     m.Longitude,
		Latitude:      m.Latitude,
		BatteryCharge: m.BatteryCharge,
		CreatedAt:     m.CreatedAt.Round(time.Second),
	}
}

func NewMeasurementList(models []model.DroneMeasurement) (out *MeasurementListResource) {
	out = &MeasurementListResource{
		Members: make([]*MeasurementResource, 0, len(models)),
	}

	for i := range models {
		out.Members = append(out.Members, NewMeasurement(&models[i]))
	}

	return // out
}
