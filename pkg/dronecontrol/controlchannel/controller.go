package controlchannel

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skyrent/fleetlink/pkg/events"
	"github.com/skyrent/fleetlink/pkg/storage"
)

const (
	defaultOrderAckTimeout = 10 * time.Second
	defaultSessionTimeout  = 120 * time.Second
)

// Controller owns the session registry and dispatches orders to the
// connected drones. All collaborators are injected; there is no ambient
// global state.
type Controller struct {
	store    storage.Interface
	events   *events.Publisher
	registry *Registry

	ackTimeout     time.Duration
	sessionTimeout time.Duration

	mu       sync.RWMutex
	channels map[string]*ControlChannel
	pending  map[string]chan string
}

func NewController(store storage.Interface, pub *events.Publisher) *Controller {
	return &Controller{
		store:          store,
		events:         pub,
		registry:       NewRegistry(),
		ackTimeout:     defaultOrderAckTimeout,
		sessionTimeout: defaultSessionTimeout,
		channels:       make(map[string]*ControlChannel),
		pending:        make(map[string]chan string),
	}
}

// SetOrderAckTimeout bounds the wait for an order acknowledgement.
func (ctrl *Controller) SetOrderAckTimeout(d time.Duration) {
	if d > 0 {
		ctrl.ackTimeout = d
	}
}

// SetSessionTimeout bounds the keep-alive silence per connection.
func (ctrl *Controller) SetSessionTimeout(d time.Duration) {
	if d > 0 {
		ctrl.sessionTimeout = d
	}
}

// Registry exposes the session registry for read-side collaborators.
func (ctrl *Controller) Registry() *Registry {
	return ctrl.registry
}

// NewControlChannel creates a control channel handler for an upgraded
// websocket connection and starts its inbox and outbox workers.
func (ctrl *Controller) NewControlChannel(conn net.Conn, terminateCh chan<- struct{}) *ControlChannel {
	cc := &ControlChannel{
		ctrl:          ctrl,
		conn:          conn,
		connID:        uuid.NewString(),
		status:        StatusEstablished,
		stopCh:        make(chan struct{}),
		pingCh:        make(chan bool),
		wsTerminateCh: terminateCh,
		wsCloseCh:     make(chan struct{}),
		wsOutboxCh:    make(chan *Response, 100),
	}

	if conn != nil {
		go cc.inboxWorker()
		go cc.outboxWorker()
	}

	return cc
}

func (ctrl *Controller) channel(connID string) *ControlChannel {
	ctrl.mu.RLock()
	defer ctrl.mu.RUnlock()

	return ctrl.channels[connID]
}

func (ctrl *Controller) attachChannel(cc *ControlChannel) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	ctrl.channels[cc.connID] = cc
}

func (ctrl *Controller) detachChannel(connID string) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	delete(ctrl.channels, connID)
}
