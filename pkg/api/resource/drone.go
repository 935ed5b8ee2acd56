package resource

import (
	"sort"
	"time"

	"github.com/skyrent/fleetlink/pkg/model"
)

type DroneResource struct {
	ID        int64      `json:"id"`
	DeviceID  string     `json:"deviceId"`
	OwnerID   int64      `json:"ownerId"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Connected bool       `json:"connected"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type DroneListResource struct {
	Members []*DroneResource `json:"members"`
}

func NewDrone(m *model.Drone, connected bool) (out *DroneResource) {
	out = &DroneResource{
		ID:        m.ID,
		DeviceID:  m.DeviceID,
		OwnerID:   m.OwnerID,
		Name:      m.Name,
		Status:    string(m.Status),
		Connected: connected,
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

func NewDroneList(m map[int64]model.Drone, connected func(deviceID string) bool) (out *DroneListResource) {
	out = &DroneListResource{
		Members: make([]*DroneResource, 0),
	}

	for _, elem := range m {
		out.Members = append(out.Members, NewDrone(&elem, connected(elem.DeviceID)))
	}

	// Default sort by ID
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].ID < out.Members[j].ID
	})

	return // out
}
