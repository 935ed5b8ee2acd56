package controlchannel

import (
	log "github.com/sirupsen/logrus"

	"github.com/skyrent/fleetlink/pkg/model"
)

// HandleTelemetry validates one inbound sample and persists it tagged
// with the device resolved from the session registry. Telemetry is lossy
// by design: malformed samples, samples from unregistered connections
// and store failures are all swallowed so that a single bad sample never
// breaks the connection.
func (ctrl *Controller) HandleTelemetry(connID string, values map[string]interface{}) {
	deviceID, ok := ctrl.registry.DeviceID(connID)
	if !ok {
		log.Debugf("controller dropped telemetry from unregistered connection '%s'", connID)
		return
	}

	m, ok := parseMeasurement(values)
	if !ok {
		log.Debugf("controller dropped malformed telemetry from device '%s'", deviceID)
		return
	}
	m.DeviceID = deviceID

	if err := ctrl.store.Measurements().Create(m); err != nil {
		log.Errorf("controller failed to save measurement of device '%s': %v", deviceID, err)
	}
}

// parseMeasurement checks the telemetry shape: a recognized realtime
// status, numeric battery figures and coordinates within range. The
// timestamp is server assigned on insert.
func parseMeasurement(values map[string]interface{}) (*model.DroneMeasurement, bool) {
	if values == nil {
		return nil, false
	}

	status, ok := values["status"].(float64)
	if !ok || !model.KnownRealtimeStatus(model.DroneRealtimeStatus(int(status))) {
		return nil, false
	}

	batteryPower, ok := values["batteryPower"].(float64)
	if !ok {
		return nil, false
	}

	longitude, ok := values["longitude"].(float64)
	if !ok || longitude < -180 || longitude > 180 {
		return nil, false
	}

	latitude, ok := values["latitude"].(float64)
	if !ok || latitude < -90 || latitude > 90 {
		return nil, false
	}

	batteryCharge, ok := values["batteryCharge"].(float64)
	if !ok {
		return nil, false
	}

	return &model.DroneMeasurement{
		Status:        model.DroneRealtimeStatus(int(status)),
		BatteryPower:  batteryPower,
		Longitude:     longitude,
		Latitude:      latitude,
		BatteryCharge: batteryCharge,
	}, true
}
