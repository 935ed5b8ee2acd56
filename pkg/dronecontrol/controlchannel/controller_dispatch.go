package controlchannel

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/skyrent/fleetlink/pkg/dronecontrol/proto"
	"github.com/skyrent/fleetlink/pkg/model"
	"github.com/skyrent/fleetlink/pkg/storage"
)

// orderArguments is the wire payload of a dispatched order: the order
// info without the internal deviceID and status fields.
type orderArguments struct {
	Action    model.DroneOrderAction `json:"action"`
	Longitude *float64               `json:"longitude,omitempty"`
	Latitude  *float64               `json:"latitude,omitempty"`
}

// SendOrder forwards a persisted order to its connected drone and waits
// for the single acknowledgement. On a valid acknowledgement the order
// row and the drone row are updated in one transaction before the
// acknowledged status is returned. A device without a live session fails
// immediately; there is no retry and no queueing.
func (ctrl *Controller) SendOrder(ctx context.Context, order *model.DroneOrder) (model.DroneOrderStatus, error) {
	connID, ok := ctrl.registry.ConnID(order.DeviceID)
	if !ok {
		return "", ErrDeviceNotConnected
	}

	cc := ctrl.channel(connID)
	if cc == nil {
		return "", ErrDeviceNotConnected
	}

	orderID := strconv.FormatInt(order.ID, 10)

	ackCh, err := ctrl.addPending(orderID)
	if err != nil {
		return "", err
	}
	defer ctrl.removePending(orderID)

	out, err := proto.MarshalNewOrderMessage(orderID, &orderArguments{
		Action:    order.Action,
		Longitude: order.Longitude,
		Latitude:  order.Latitude,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal order message")
	}

	if !cc.pushBackMessage(FlagContinue, out) {
		return "", errors.New("controlchannel outbox is full")
	}

	select {
	case ack := <-ackCh:
		return ctrl.completeOrder(order, ack)
	case <-time.After(ctrl.ackTimeout):
		log.Warnf("controller timed out waiting for acknowledgement of order %s", orderID)
		return "", ErrAckTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// completeOrder persists an acknowledged status: the order row takes the
// acknowledged value, the drone row becomes IDLE for terminal
// acknowledgements or WORKING for busy ones, both inside one store
// transaction.
func (ctrl *Controller) completeOrder(order *model.DroneOrder, ack string) (model.DroneOrderStatus, error) {
	status := model.DroneOrderStatus(ack)
	if !model.KnownOrderStatus(status) {
		return "", &ProtocolViolationError{Status: ack}
	}

	droneStatus := model.DroneStatusAfterAck(status)

	if err := ctrl.store.Orders().CompleteOrder(order.ID, status, order.DeviceID, droneStatus); err != nil {
		if err == storage.ErrNotFound {
			return "", errors.Errorf("order %d or drone '%s' not found, update rolled back", order.ID, order.DeviceID)
		}
		return "", errors.Wrap(err, "failed to persist order acknowledgement")
	}

	if err := ctrl.events.PublishOrderStatus(order.ID, order.DeviceID, status); err != nil {
		log.Errorf("controller could not publish order status: %v", err)
	}

	return status, nil
}

// handleOrderAck routes an acknowledgement to the pending dispatch
// waiting for it. It reports whether a dispatch was found.
func (ctrl *Controller) handleOrderAck(orderID, status string) bool {
	ctrl.mu.Lock()
	ackCh, ok := ctrl.pending[orderID]
	if ok {
		delete(ctrl.pending, orderID)
	}
	ctrl.mu.Unlock()

	if !ok {
		return false
	}

	ackCh <- status
	return true
}

func (ctrl *Controller) addPending(orderID string) (chan string, error) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if _, ok := ctrl.pending[orderID]; ok {
		return nil, ErrOrderPending
	}

	ackCh := make(chan string, 1)
	ctrl.pending[orderID] = ackCh
	return ackCh, nil
}

func (ctrl *Controller) removePending(orderID string) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	delete(ctrl.pending, orderID)
}
