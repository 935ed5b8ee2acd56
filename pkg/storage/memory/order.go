package memory

import (
	"sync"
	"time"

	"github.com/skyrent/fleetlink/pkg/model"
	"github.com/skyrent/fleetlink/pkg/storage"
)

type orderStore struct {
	store  map[int64]model.DroneOrder
	nextID int64
	drones *droneStore
	sync.RWMutex
}

func newOrderStore(drones *droneStore) *orderStore {
	return &orderStore{
		store:  make(map[int64]model.DroneOrder),
		nextID: 1,
		drones: drones,
	}
}

func (s *orderStore) FindByID(id int64) (*model.DroneOrder, error) {
	s.RLock()
	defer s.RUnlock()
	if m, ok := s.store[id]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *orderStore) Create(m *model.DroneOrder) error {
	s.Lock()
	defer s.Unlock()

	m.ID = s.getNextID()
	m.CreatedAt = time.Now().Round(time.Second).UTC()
	m.UpdatedAt = time.Now().Round(time.Second).UTC()

	s.store[m.ID] = *m

	return nil
}

func (s *orderStore) UpdateStatus(id int64, status model.DroneOrderStatus) error {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[id]
	if !ok {
		return storage.ErrNotFound
	}

	m.Status = status
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	s.store[id] = m

	return nil
}

// CompleteOrder mirrors the transactional postgres implementation: both
// the order row and the drone row change, or neither does.
func (s *orderStore) CompleteOrder(id int64, status model.DroneOrderStatus, deviceID string, droneStatus model.DroneStatus) error {
	s.Lock()
	defer s.Unlock()
	s.drones.Lock()
	defer s.drones.Unlock()

	m, ok := s.store[id]
	if !ok {
		return storage.ErrNotFound
	}

	if err := s.drones.updateStatusLocked(deviceID, droneStatus); err != nil {
		return err
	}

	m.Status = status
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	s.store[id] = m

	return nil
}

func (s *orderStore) getNextID() int64 {
	id := s.nextID
	s.nextID++
	return id
}
