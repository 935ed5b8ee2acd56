package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skyrent/fleetlink/pkg/model"
)

func newMeasurementStore(db *sqlx.DB) *measurementStore {
	return &measurementStore{
		db: db,
	}
}

type measurementStore struct {
	db *sqlx.DB
}

type sqlDataMeasurement struct {
	ID            int64     `db:"id"`
	DeviceID      string    `db:"device_id"`
	Status        int       `db:"status"`
	BatteryPower  float64   `db:"battery_power"`
	Longitude     float64   `db:"longitude"`
	Latitude      float64   `db:"latitude"`
	BatteryCharge float64   `db:"battery_charge"`
	CreatedAt     time.Time `db:"created_at"`
}

var sqlParamsMeasurement = []string{
	"id",
	"device_id",
	"status",
	"battery_power",
	"longitude",
	"latitude",
	"battery_charge",
	"created_at",
}

func (d *sqlDataMeasurement) Scan(m *model.DroneMeasurement) error {
	createdAt := m.CreatedAt
	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	d.ID = m.ID
	d.DeviceID = m.DeviceID
	d.Status = int(m.Status)
	d.BatteryPower = m.BatteryPower
	d.Longitude = m.Longitude
	d.Latitude = m.Latitude
	d.BatteryCharge = m.BatteryCharge
	d.CreatedAt = createdAt

	return nil
}

func (d *sqlDataMeasurement) Model() (*model.DroneMeasurement, error) {
	m := &model.DroneMeasurement{
		ID:            d.ID,
		DeviceID:      d.DeviceID,
		Status:        model.DroneRealtimeStatus(d.Status),
		BatteryPower:  d.BatteryPower,
		Longitude:     d.Longitude,
		Latitude:      d.Latitude,
		BatteryCharge: d.BatteryCharge,
		CreatedAt:     d.CreatedAt,
	}

	return m, nil
}

func (s *measurementStore) FetchByDeviceID(deviceID string) ([]model.DroneMeasurement, error) {
	rows := make([]sqlDataMeasurement, 0)
	models := make([]model.DroneMeasurement, 0)

	query := "SELECT * FROM drone_measurements WHERE device_id=$1 ORDER BY created_at"
	if err := s.db.Select(&rows, query, deviceID); err != nil {
		return nil, errors.Wrap(err, "failed to fetch drone measurements")
	}

	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to measurement model")
		}

		models = append(models, *m)
	}

	return models, nil
}

func (s *measurementStore) Create(m *model.DroneMeasurement) error {
	d := sqlDataMeasurement{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert measurement model to SQL data")
	}

	// Remove the id column because it's of SQL type serial
	sqlParamsWithoutID := make([]string, 0)
	for _, p := range sqlParamsMeasurement {
		if p != "id" {
			sqlParamsWithoutID = append(sqlParamsWithoutID, p)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO drone_measurements (%s) VALUES (%s) RETURNING id",
		strings.Join(sqlParamsWithoutID, ", "),
		":"+strings.Join(sqlParamsWithoutID, ", :"),
	)
	rows, err := s.db.NamedQuery(query, d)
	if err != nil {
		return errors.Wrap(err, "failed to create drone measurement")
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&m.ID)
	}

	return nil
}
