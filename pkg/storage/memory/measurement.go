package memory

import (
	"sync"
	"time"

	"github.com/skyrent/fleetlink/pkg/model"
)

type measurementStore struct {
	store  map[int64]model.DroneMeasurement
	nextID int64
	sync.RWMutex
}

func newMeasurementStore() *measurementStore {
	return &measurementStore{
		store:  make(map[int64]model.DroneMeasurement),
		nextID: 1,
	}
}

func (s *measurementStore) FetchByDeviceID(deviceID string) ([]model.DroneMeasurement, error) {
	s.RLock()
	defer s.RUnlock()
	models := make([]model.DroneMeasurement, 0)

	for _, m := range s.store {
		if m.DeviceID == deviceID {
			models = append(models, m)
		}
	}

	return models, nil
}

func (s *measurementStore) Create(m *model.DroneMeasurement) error {
	s.Lock()
	defer s.Unlock()

	m.ID = s.getNextID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().Round(time.Second).UTC()
	}

	s.store[m.ID] = *m

	return nil
}

func (s *measurementStore) getNextID() int64 {
	id := s.nextID
	s.nextID++
	return id
}
