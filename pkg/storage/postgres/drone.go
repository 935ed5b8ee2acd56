package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skyrent/fleetlink/pkg/model"
	"github.com/skyrent/fleetlink/pkg/storage"
)

func newDroneStore(db *sqlx.DB) *droneStore {
	return &droneStore{
		db: db,
	}
}

type droneStore struct {
	db *sqlx.DB
}

type sqlDataDrone struct {
	ID           int64     `db:"id"`
	DeviceID     string    `db:"device_id"`
	OwnerID      int64     `db:"owner_id"`
	Name         string    `db:"name"`
	Status       string    `db:"status"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

var sqlParamsDrone = []string{
	"id",
	"device_id",
	"owner_id",
	"name",
	"status",
	"password_hash",
	"created_at",
	"updated_at",
}

func (d *sqlDataDrone) Scan(m *model.Drone) error {
	var createdAt, updatedAt = m.CreatedAt, m.UpdatedAt

	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	if m.UpdatedAt.IsZero() {
		updatedAt = time.Now().Round(time.Second).UTC()
	}

	d.ID = m.ID
	d.DeviceID = m.DeviceID
	d.OwnerID = m.OwnerID
	d.Name = m.Name
	d.Status = string(m.Status)
	d.PasswordHash = m.PasswordHash
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt

	return nil
}

func (d *sqlDataDrone) Model() (*model.Drone, error) {
	m := &model.Drone{
		ID:           d.ID,
		DeviceID:     d.DeviceID,
		OwnerID:      d.OwnerID,
		Name:         d.Name,
		Status:       model.DroneStatus(d.Status),
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}

	return m, nil
}

func (s *droneStore) FetchAll() (map[int64]model.Drone, error) {
	rows := make([]sqlDataDrone, 0)
	models := make(map[int64]model.Drone)

	query := "SELECT * FROM drones"
	if err := s.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch all drones")
	}

	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to drone model")
		}

		models[d.ID] = *m
	}

	return models, nil
}

func (s *droneStore) FindByDeviceID(deviceID string) (*model.Drone, error) {
	d := sqlDataDrone{}
	query := "SELECT * FROM drones WHERE device_id=$1"
	if err := s.db.Get(&d, query, deviceID); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find drone")
	}

	return d.Model()
}

func (s *droneStore) Create(m *model.Drone) error {
	if m.Status == "" {
		m.Status = model.StatusOffline
	}

	d := sqlDataDrone{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert drone model to SQL data")
	}

	// Remove the id column because it's of SQL type serial
	sqlParamsWithoutID := make([]string, 0)
	for _, p := range sqlParamsDrone {
		if p != "id" {
			sqlParamsWithoutID = append(sqlParamsWithoutID, p)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO drones (%s) VALUES (%s) RETURNING id",
		strings.Join(sqlParamsWithoutID, ", "),
		":"+strings.Join(sqlParamsWithoutID, ", :"),
	)
	rows, err := s.db.NamedQuery(query, d)
	if err != nil {
		return errors.Wrap(err, "failed to create drone")
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&m.ID)
	}

	return nil
}

func (s *droneStore) UpdateStatus(deviceID string, status model.DroneStatus) error {
	query := "UPDATE drones SET status=$1, updated_at=$2 WHERE device_id=$3"
	res, err := s.db.Exec(query, string(status), time.Now().Round(time.Second).UTC(), deviceID)
	if err != nil {
		return errors.Wrap(err, "failed to update drone status")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to update drone status")
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *droneStore) UpdateStatusIf(deviceID string, from, to model.DroneStatus) (bool, error) {
	query := "UPDATE drones SET status=$1, updated_at=$2 WHERE device_id=$3 AND status=$4"
	res, err := s.db.Exec(query, string(to), time.Now().Round(time.Second).UTC(), deviceID, string(from))
	if err != nil {
		return false, errors.Wrap(err, "failed to update drone status")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to update drone status")
	}

	return n > 0, nil
}
