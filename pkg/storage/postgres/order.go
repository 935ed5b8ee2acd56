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

func newOrderStore(db *sqlx.DB) *orderStore {
	return &orderStore{
		db: db,
	}
}

type orderStore struct {
	db *sqlx.DB
}

type sqlDataOrder struct {
	ID        int64            `db:"id"`
	DeviceID  string           `db:"device_id"`
	UserID    int64            `db:"user_id"`
	Action    string           `db:"action"`
	Longitude sql.NullFloat64  `db:"longitude"`
	Latitude  sql.NullFloat64  `db:"latitude"`
	Status    string           `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

var sqlParamsOrder = []string{
	"id",
	"device_id",
	"user_id",
	"action",
	"longitude",
	"latitude",
	"status",
	"created_at",
	"updated_at",
}

func (d *sqlDataOrder) Scan(m *model.DroneOrder) error {
	var createdAt, updatedAt = m.CreatedAt, m.UpdatedAt

	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	if m.UpdatedAt.IsZero() {
		updatedAt = time.Now().Round(time.Second).UTC()
	}

	d.ID = m.ID
	d.DeviceID = m.DeviceID
	d.UserID = m.UserID
	d.Action = string(m.Action)
	d.Longitude = sql.NullFloat64{}
	if m.Longitude != nil {
		d.Longitude = sql.NullFloat64{Float64: *m.Longitude, Valid: true}
	}
	d.Latitude = sql.NullFloat64{}
	if m.Latitude != nil {
		d.Latitude = sql.NullFloat64{Float64: *m.Latitude, Valid: true}
	}
	d.Status = string(m.Status)
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt

	return nil
}

func (d *sqlDataOrder) Model() (*model.DroneOrder, error) {
	m := &model.DroneOrder{
		ID:        d.ID,
		DeviceID:  d.DeviceID,
		UserID:    d.UserID,
		Action:    model.DroneOrderAction(d.Action),
		Status:    model.DroneOrderStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	if d.Longitude.Valid {
		m.Longitude = &d.Longitude.Float64
	}
	if d.Latitude.Valid {
		m.Latitude = &d.Latitude.Float64
	}

	return m, nil
}

func (s *orderStore) FindByID(id int64) (*model.DroneOrder, error) {
	d := sqlDataOrder{}
	query := "SELECT * FROM drone_orders WHERE id=$1"
	if err := s.db.Get(&d, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find drone order")
	}

	return d.Model()
}

func (s *orderStore) Create(m *model.DroneOrder) error {
	d := sqlDataOrder{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert drone order model to SQL data")
	}

	// Remove the id column because it's of SQL type serial
	sqlParamsWithoutID := make([]string, 0)
	for _, p := range sqlParamsOrder {
		if p != "id" {
			sqlParamsWithoutID = append(sqlParamsWithoutID, p)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO drone_orders (%s) VALUES (%s) RETURNING id",
		strings.Join(sqlParamsWithoutID, ", "),
		":"+strings.Join(sqlParamsWithoutID, ", :"),
	)
	rows, err := s.db.NamedQuery(query, d)
	if err != nil {
		return errors.Wrap(err, "failed to create drone order")
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&m.ID)
	}

	return nil
}

func (s *orderStore) UpdateStatus(id int64, status model.DroneOrderStatus) error {
	query := "UPDATE drone_orders SET status=$1, updated_at=$2 WHERE id=$3"
	res, err := s.db.Exec(query, string(status), time.Now().Round(time.Second).UTC(), id)
	if err != nil {
		return errors.Wrap(err, "failed to update drone order status")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to update drone order status")
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// CompleteOrder updates the order row and the drone row atomically. The
// transaction is rolled back as soon as one of the updates affects no
// rows, so partial state never becomes visible.
func (s *orderStore) CompleteOrder(id int64, status model.DroneOrderStatus, deviceID string, droneStatus model.DroneStatus) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed to begin order transaction")
	}

	now := time.Now().Round(time.Second).UTC()

	res, err := tx.Exec("UPDATE drone_orders SET status=$1, updated_at=$2 WHERE id=$3",
		string(status), now, id)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to update drone order status")
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		tx.Rollback()
		if err != nil {
			return errors.Wrap(err, "failed to update drone order status")
		}
		return storage.ErrNotFound
	}

	res, err = tx.Exec("UPDATE drones SET status=$1, updated_at=$2 WHERE device_id=$3",
		string(droneStatus), now, deviceID)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to update drone status")
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		tx.Rollback()
		if err != nil {
			return errors.Wrap(err, "failed to update drone status")
		}
		return storage.ErrNotFound
	}

	return errors.Wrap(tx.Commit(), "failed to commit order transaction")
}
