package memory

import (
	"sync"
	"time"

	"github.com/skyrent/fleetlink/pkg/model"
	"github.com/skyrent/fleetlink/pkg/storage"
)

type droneStore struct {
	store  map[int64]model.Drone
	nextID int64
	sync.RWMutex
}

func newDroneStore() *droneStore {
	return &droneStore{
		store:  make(map[int64]model.Drone),
		nextID: 1,
	}
}

func (s *droneStore) FetchAll() (map[int64]model.Drone, error) {
	s.RLock()
	defer s.RUnlock()
	models := make(map[int64]model.Drone, len(s.store))

	for id, m := range s.store {
		models[id] = m
	}

	return models, nil
}

func (s *droneStore) FindByDeviceID(deviceID string) (*model.Drone, error) {
	s.RLock()
	defer s.RUnlock()

	for _, m := range s.store {
		if m.DeviceID == deviceID {
			return &m, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (s *droneStore) Create(m *model.Drone) error {
	s.Lock()
	defer s.Unlock()

	if m.Status == "" {
		m.Status = model.StatusOffline
	}

	m.ID = s.getNextID()
	m.CreatedAt = time.Now().Round(time.Second).UTC()
	m.UpdatedAt = time.Now().Round(time.Second).UTC()

	s.store[m.ID] = *m

	return nil
}

func (s *droneStore) UpdateStatus(deviceID string, status model.DroneStatus) error {
	s.Lock()
	defer s.Unlock()

	return s.updateStatusLocked(deviceID, status)
}

func (s *droneStore) UpdateStatusIf(deviceID string, from, to model.DroneStatus) (bool, error) {
	s.Lock()
	defer s.Unlock()

	for id, m := range s.store {
		if m.DeviceID == deviceID {
			if m.Status != from {
				return false, nil
			}
			m.Status = to
			m.UpdatedAt = time.Now().Round(time.Second).UTC()
			s.store[id] = m
			return true, nil
		}
	}

	return false, nil
}

func (s *droneStore) updateStatusLocked(deviceID string, status model.DroneStatus) error {
	for id, m := range s.store {
		if m.DeviceID == deviceID {
			m.Status = status
			m.UpdatedAt = time.Now().Round(time.Second).UTC()
			s.store[id] = m
			return nil
		}
	}

	return storage.ErrNotFound
}

func (s *droneStore) getNextID() int64 {
	id := s.nextID
	s.nextID++
	return id
}
