package controlchannel

import (
	"net/url"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/skyrent/fleetlink/pkg/model"
	"github.com/skyrent/fleetlink/pkg/storage"
)

type sessionDetails struct {
	SessionTimeout int `json:"session_timeout,omitempty"`
	PingInterval   int `json:"ping_interval,omitempty"`
	PongTimeout    int `json:"pong_max_wait_time,omitempty"`
}

// RegisterSession is the authentication gate. It runs once per new
// transport connection, before any frame is processed, and validates the
// handshake query parameters against the stored drone credentials. On
// success the drone transitions OFFLINE to IDLE and the session is added
// to the registry.
func (ctrl *Controller) RegisterSession(cc *ControlChannel, query url.Values) (string, interface{}, error) {
	deviceID, password, err := handshakeCredentials(query)
	if err != nil {
		return "", nil, err
	}

	drone, err := ctrl.store.Drones().FindByDeviceID(deviceID)
	if err == storage.ErrNotFound {
		log.Warnf("controller rejected the control channel for unknown device '%s'", deviceID)
		return "", nil, NewRejectionError(RejectReasonAuthBad, nil)
	} else if err != nil {
		log.Errorf("controller failed to look up device '%s': %v", deviceID, err)
		return "", nil, NewRejectionError(RejectReasonServer, nil)
	}

	if bcrypt.CompareHashAndPassword([]byte(drone.PasswordHash), []byte(password)) != nil {
		log.Warnf("controller rejected the control channel for device '%s' because of a bad password", deviceID)
		return "", nil, NewRejectionError(RejectReasonAuthBad, nil)
	}

	if drone.Status != model.StatusOffline {
		log.Warnf("controller rejected the control channel because device '%s' is %s", deviceID, drone.Status)
		return "", nil, NewRejectionError(RejectReasonStatusBad, nil)
	}

	// Conditional update: two concurrent handshakes for one device both
	// pass the status check above, but only one of them flips the row
	// from OFFLINE. The loser is rejected here.
	ok, err := ctrl.store.Drones().UpdateStatusIf(deviceID, model.StatusOffline, model.StatusIdle)
	if err != nil {
		log.Errorf("controller failed to transition device '%s' to IDLE: %v", deviceID, err)
		return "", nil, NewRejectionError(RejectReasonServer, nil)
	}
	if !ok {
		log.Warnf("controller rejected the control channel because device '%s' lost the login race", deviceID)
		return "", nil, NewRejectionError(RejectReasonStatusBad, nil)
	}

	snapshot := *drone
	snapshot.Status = model.StatusIdle
	if err := ctrl.registry.Register(cc.connID, deviceID, snapshot); err != nil {
		// The conditional update should make this unreachable; restore
		// the stored status so the device can retry.
		log.Errorf("controller failed to register session for device '%s': %v", deviceID, err)
		if _, err := ctrl.store.Drones().UpdateStatusIf(deviceID, model.StatusIdle, model.StatusOffline); err != nil {
			log.Errorf("controller failed to restore status of device '%s': %v", deviceID, err)
		}
		return "", nil, NewRejectionError(RejectReasonStatusBad, nil)
	}

	ctrl.attachChannel(cc)

	if err := ctrl.events.PublishDroneStatus(deviceID, model.StatusIdle, cc.connID); err != nil {
		log.Errorf("controller could not publish device status: %v", err)
	}

	log.Infof("controller added successfully a new control channel session for device '%s'", deviceID)

	// Tell control channel that the registration is admitted
	cc.AdmitSession(deviceID)

	details := &sessionDetails{
		SessionTimeout: int(ctrl.sessionTimeout.Seconds()),
		PingInterval:   int(ctrl.sessionTimeout.Seconds()) / 4,
		PongTimeout:    4,
	}
	return cc.connID, details, nil
}

// UnregisterSession is the disconnection reconciler. It removes the
// session from the registry and marks the drone offline, best effort. A
// connection that never registered is a no-op.
func (ctrl *Controller) UnregisterSession(cc *ControlChannel) {
	ctrl.detachChannel(cc.connID)

	deviceID, ok := ctrl.registry.DeviceID(cc.connID)
	if !ok {
		return // Failed handshake, nothing to reconcile
	}

	ctrl.registry.Remove(cc.connID)

	// The drone is gone; a failed update is logged, not retried.
	if err := ctrl.store.Drones().UpdateStatus(deviceID, model.StatusOffline); err != nil {
		log.Errorf("controller failed to mark device '%s' offline: %v", deviceID, err)
	}

	if err := ctrl.events.PublishDroneStatus(deviceID, model.StatusOffline, cc.connID); err != nil {
		log.Errorf("controller could not publish device status: %v", err)
	}

	log.Infof("controller removed successfully the control channel session for device '%s'", deviceID)
}

// handshakeCredentials extracts device-id and password from the upgrade
// request query. Both are required and must be single valued; repeated
// parameters are rejected as malformed.
func handshakeCredentials(query url.Values) (deviceID, password string, err error) {
	ids := query["device-id"]
	passwords := query["password"]

	if len(ids) != 1 || ids[0] == "" || len(passwords) != 1 || passwords[0] == "" {
		return "", "", NewRejectionError(RejectReasonCredentials, nil)
	}

	return ids[0], passwords[0], nil
}
