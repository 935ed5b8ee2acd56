package controlchannel

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrent/fleetlink/pkg/model"
	"github.com/skyrent/fleetlink/pkg/storage"
)

func seedOrder(t *testing.T, store storage.Interface, deviceID string, action model.DroneOrderAction) *model.DroneOrder {
	t.Helper()
	order := &model.DroneOrder{
		DeviceID: deviceID,
		UserID:   1,
		Action:   action,
		Status:   model.OrderStatusEnqueued,
	}
	require.NoError(t, store.Orders().Create(order))
	return order
}

// ackFromDrone drains the outgoing order frame and answers it with the
// given acknowledgement, mimicking the drone side of the channel.
func ackFromDrone(t *testing.T, cc *ControlChannel, orderID int64, status string) {
	t.Helper()
	select {
	case <-cc.wsOutboxCh:
	case <-time.After(time.Second):
		t.Error("no order frame was pushed to the drone")
		return
	}
	ack, _ := json.Marshal([]interface{}{11, fmt.Sprintf("%d", orderID), status})
	cc.HandleMessage(ack)
}

func TestSendOrderFailsWithoutSession(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	order := seedOrder(t, store, "D1", model.ActionStopAndWait)

	_, err := ctrl.SendOrder(context.Background(), order)
	assert.Equal(t, ErrDeviceNotConnected, err)

	// The stored rows are untouched by a failed dispatch.
	stored, err := store.Orders().FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusEnqueued, stored.Status)
	assert.Equal(t, model.StatusOffline, droneStatus(t, store, "D1"))
}

func TestSendOrderPersistsTerminalAck(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	cc := connectDrone(t, ctrl, "D1", "secret")
	order := seedOrder(t, store, "D1", model.ActionTakeCargo)

	go ackFromDrone(t, cc, order.ID, string(model.OrderStatusDone))

	status, err := ctrl.SendOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDone, status)

	stored, err := store.Orders().FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDone, stored.Status)
	assert.Equal(t, model.StatusIdle, droneStatus(t, store, "D1"))
}

func TestSendOrderPersistsBusyAck(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	cc := connectDrone(t, ctrl, "D1", "secret")
	order := seedOrder(t, store, "D1", model.ActionMoveToLocation)

	go ackFromDrone(t, cc, order.ID, string(model.OrderStatusStarted))

	status, err := ctrl.SendOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusStarted, status)
	assert.Equal(t, model.StatusWorking, droneStatus(t, store, "D1"))
}

func TestSendOrderRejectsUnknownAckStatus(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	cc := connectDrone(t, ctrl, "D1", "secret")
	order := seedOrder(t, store, "D1", model.ActionReleaseCargo)

	go ackFromDrone(t, cc, order.ID, "EXPLODED")

	_, err := ctrl.SendOrder(context.Background(), order)
	require.True(t, IsProtocolViolationError(err), "got %v", err)

	// Nothing was persisted for the bogus acknowledgement.
	stored, err := store.Orders().FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusEnqueued, stored.Status)
	assert.Equal(t, model.StatusIdle, droneStatus(t, store, "D1"))
}

func TestSendOrderTimesOutWithoutAck(t *testing.T) {
	ctrl, store := newTestController(t)
	ctrl.SetOrderAckTimeout(50 * time.Millisecond)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	cc := connectDrone(t, ctrl, "D1", "secret")
	order := seedOrder(t, store, "D1", model.ActionStopAndWait)

	// Drain the frame but never answer it.
	go func() { <-cc.wsOutboxCh }()

	start := time.Now()
	_, err := ctrl.SendOrder(context.Background(), order)
	assert.Equal(t, ErrAckTimeout, err)
	assert.Less(t, time.Since(start), time.Second)

	stored, err := store.Orders().FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusEnqueued, stored.Status)
}

func TestSendOrderHonorsContextCancellation(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	cc := connectDrone(t, ctrl, "D1", "secret")
	order := seedOrder(t, store, "D1", model.ActionStopAndWait)

	go func() { <-cc.wsOutboxCh }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ctrl.SendOrder(ctx, order)
	assert.Equal(t, context.Canceled, err)
}

func TestSendOrderRefusesConcurrentDuplicate(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	cc := connectDrone(t, ctrl, "D1", "secret")
	order := seedOrder(t, store, "D1", model.ActionStopAndWait)

	go func() { <-cc.wsOutboxCh }()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		ctrl.SendOrder(context.Background(), order)
	}()

	// Wait until the first dispatch parked itself in the pending table.
	require.Eventually(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return len(ctrl.pending) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := ctrl.SendOrder(context.Background(), order)
	assert.Equal(t, ErrOrderPending, err)

	require.True(t, ctrl.handleOrderAck(fmt.Sprintf("%d", order.ID), string(model.OrderStatusDone)))
	<-firstDone
}

func TestHandleOrderAckIgnoresUnknownOrder(t *testing.T) {
	ctrl, store := newTestController(t)
	seedDrone(t, store, "D1", "secret", model.StatusOffline)
	connectDrone(t, ctrl, "D1", "secret")

	assert.False(t, ctrl.handleOrderAck("999", string(model.OrderStatusDone)))
	assert.Equal(t, model.StatusIdle, droneStatus(t, store, "D1"))
}
