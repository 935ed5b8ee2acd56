package controlchannel

import (
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/skyrent/fleetlink/pkg/dronecontrol/proto"
)

type Status int

const (
	StatusEstablished Status = iota
	StatusRegistered
)

type Flag int

const (
	FlagContinue Flag = iota
	FlagCloseGracefully
	FlagTerminate
)

type Response struct {
	Flag Flag
	Data []byte
}

// ControlChannel is the per-connection message pump. A channel is
// established on upgrade and registered once the handshake admits the
// drone; afterwards it carries telemetry inbound and orders outbound.
type ControlChannel struct {
	sync.RWMutex
	ctrl          *Controller
	conn          net.Conn
	connID        string
	deviceID      string
	status        Status
	lastMessageAt time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	pingCh   chan bool

	wsTerminateCh  chan<- struct{}
	wsTermOnce     sync.Once
	wsCloseCh      chan struct{}
	wsCloseOnce    sync.Once
	wsOutboxCh     chan *Response
}

// ConnID returns the transport connection identity of this channel.
func (cc *ControlChannel) ConnID() string {
	return cc.connID
}

// Close is called when the websocket handler method is exiting, e.g. the
// connection is closed.
func (cc *ControlChannel) Close() {
	cc.stopOnce.Do(func() {
		close(cc.stopCh)
	})
	cc.ctrl.UnregisterSession(cc)
}

// HandleMessage is called by the inbox worker when data is received from
// the connected drone.
func (cc *ControlChannel) HandleMessage(data []byte) ([]byte, Flag, error) {
	log.Debugf("controlchannel handles message '%s'", string(data))

	msgType, msg, err := proto.UnmarshalMessage(data)
	if err != nil {
		return cc.terminateAndLogError("invalid payload", err)
	}

	switch msgType {
	case proto.MessageTypePing:
		return cc.handleMessage(msg, cc.ensureRegistered(cc.keepAliveHandler()))
	case proto.MessageTypeTelemetry:
		return cc.handleMessage(msg, cc.telemetryHandler())
	case proto.MessageTypeOrderResult:
		return cc.handleMessage(msg, cc.ensureRegistered(cc.orderResultHandler()))
	}

	return cc.terminateAndLog("unhandled message")
}

// AdmitSession is called by the controller after a successful handshake.
// It binds the device identity to the channel and starts the keep alive
// handling in the background (waitForPingOrClose).
func (cc *ControlChannel) AdmitSession(deviceID string) {
	cc.Lock()
	cc.status = StatusRegistered
	cc.deviceID = deviceID
	cc.Unlock()

	// Close the connection if the drone stays silent beyond the session
	// timeout.
	go cc.waitForPingOrClose()

	log.Infof("controlchannel registered successfully for device '%s'", deviceID)
}

func (cc *ControlChannel) waitForPingOrClose() {
	for {
		select {
		case <-cc.pingCh:
			// Reset the timeout only, the loop continues.
		case <-cc.stopCh:
			return
		case <-time.After(cc.ctrl.sessionTimeout):
			log.Warnf("controlchannel for device '%s' timed out and terminates the connection", cc.deviceID)
			cc.closeGracefully()
			return
		}
	}
}

// messageHandler is a tooling for handling incoming messages, similar to
// the go http handler implementation. It allows middleware handlers such
// as ensureRegistered.
type messageHandler interface {
	Handle(msg interface{}) ([]byte, Flag, error)
}

type messageHandlerFunc func(msg interface{}) ([]byte, Flag, error)

func (f messageHandlerFunc) Handle(msg interface{}) ([]byte, Flag, error) {
	return f(msg)
}

func (cc *ControlChannel) handleMessage(msg interface{}, h messageHandler) ([]byte, Flag, error) {
	cc.Lock()
	cc.lastMessageAt = time.Now().Round(time.Second).UTC()
	cc.Unlock()

	return h.Handle(msg)
}

func (cc *ControlChannel) ensureRegistered(next messageHandler) messageHandler {
	return messageHandlerFunc(func(msg interface{}) ([]byte, Flag, error) {
		if cc.registered() != StatusRegistered {
			return cc.terminateAndLog("controlchannel is not registered")
		}
		return next.Handle(msg)
	})
}

func (cc *ControlChannel) registered() Status {
	cc.RLock()
	defer cc.RUnlock()
	return cc.status
}

func (cc *ControlChannel) keepAliveHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) ([]byte, Flag, error) {
		// Notify waitForPingOrClose, otherwise the session timeout
		// closes the connection.
		go func() {
			select {
			case cc.pingCh <- true:
			case <-cc.stopCh:
			}
		}()

		return cc.pongMessage()
	})
}

func (cc *ControlChannel) telemetryHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) ([]byte, Flag, error) {
		telemetryMsg, err := proto.MustTelemetryMessage(msg)
		if err != nil {
			return cc.terminateAndLogError("telemetry message expected", err)
		}

		// Telemetry is lossy by design: invalid samples and samples from
		// unregistered connections are dropped without an answer.
		cc.ctrl.HandleTelemetry(cc.connID, telemetryMsg.Values)

		return cc.continueWithoutMessage()
	})
}

func (cc *ControlChannel) orderResultHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) ([]byte, Flag, error) {
		resultMsg, err := proto.MustOrderResultMessage(msg)
		if err != nil {
			return cc.terminateAndLogError("order result message expected", err)
		}

		if !cc.ctrl.handleOrderAck(resultMsg.OrderID, resultMsg.Status) {
			// Late acknowledgement for a dispatch that already timed out
			// or was never issued. Not worth killing the channel over.
			log.Warnf("controlchannel received order result for unknown order '%s'", resultMsg.OrderID)
		}

		return cc.continueWithoutMessage()
	})
}

// Welcome pushes the admission frame after a successful handshake.
func (cc *ControlChannel) Welcome(sessionID string, details interface{}) {
	cc.welcomeMessage(sessionID, details)
}

// AbortAndClose pushes a structured rejection frame and closes the
// socket gracefully. The connection is never admitted.
func (cc *ControlChannel) AbortAndClose(reason string, details interface{}) {
	cc.abortMessageAndClose(reason, details)
}

func (cc *ControlChannel) terminateAndLog(message string) ([]byte, Flag, error) {
	log.Errorf("controlchannel terminates with message: %s", message)
	cc.pushBackMessage(FlagTerminate, nil)
	return nil, FlagTerminate, nil
}

func (cc *ControlChannel) terminateAndLogError(message string, err error) ([]byte, Flag, error) {
	log.Errorf("controlchannel terminates with message and error: %s: %s", message, err.Error())
	cc.pushBackMessage(FlagTerminate, nil)
	return nil, FlagTerminate, nil
}

func (cc *ControlChannel) abortMessageAndClose(reason string, details interface{}) ([]byte, Flag, error) {
	out, err := proto.MarshalNewAbortMessage(reason, details)
	// This error should happen never! If it happens log an urgent error
	// and terminate the websocket session for safety.
	if err != nil {
		return cc.terminateAndLogError("could not marshal message", err)
	}
	cc.pushBackMessage(FlagCloseGracefully, out)
	return out, FlagCloseGracefully, nil
}

func (cc *ControlChannel) welcomeMessage(sessionID string, details interface{}) ([]byte, Flag, error) {
	out, err := proto.MarshalNewWelcomeMessage(sessionID, details)
	if err != nil {
		return cc.terminateAndLogError("could not marshal message", err)
	}
	cc.pushBackMessage(FlagContinue, out)
	return out, FlagContinue, nil
}

func (cc *ControlChannel) pongMessage() ([]byte, Flag, error) {
	out, err := proto.MarshalNewPongMessage()
	if err != nil {
		return cc.terminateAndLogError("could not marshal message", err)
	}
	cc.pushBackMessage(FlagContinue, out)
	return out, FlagContinue, nil
}

func (cc *ControlChannel) continueWithoutMessage() ([]byte, Flag, error) {
	return nil, FlagContinue, nil
}

func (cc *ControlChannel) pushBackMessage(flag Flag, data []byte) bool {
	select {
	case cc.wsOutboxCh <- newResponse(flag, data):
		return true
	default:
		return false // Buffer is full
	}
}

func (cc *ControlChannel) closeGracefully() {
	cc.wsCloseOnce.Do(func() {
		close(cc.wsCloseCh)
	})
}

func (cc *ControlChannel) terminate() {
	cc.wsTermOnce.Do(func() {
		close(cc.wsTerminateCh)
	})
}

func newResponse(flag Flag, data []byte) *Response {
	r := &Response{
		Flag: flag,
	}
	if data != nil {
		r.Data = make([]byte, len(data))
		copy(r.Data, data)
	}
	return r
}
