package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"

	"github.com/skyrent/fleetlink/pkg/api/resource"
	"github.com/skyrent/fleetlink/pkg/dronecontrol/controlchannel"
	"github.com/skyrent/fleetlink/pkg/model"
	"github.com/skyrent/fleetlink/pkg/storage"
)

// handleCreateOrder persists a new order and forwards it to the
// connected drone. The order row survives a failed dispatch: it is
// marked ERROR so the user sees what happened to it.
func (h *Handler) handleCreateOrder(c echo.Context) error {
	r := &resource.OrderResource{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	m, err := resource.ValidateOrder(r)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	if _, err := h.store.Drones().FindByDeviceID(m.DeviceID); err != nil {
		if err == storage.ErrNotFound {
			return c.JSON(http.StatusNotFound, err)
		}
		return c.JSON(http.StatusInternalServerError, err)
	}

	m.Status = model.OrderStatusEnqueued
	if err := h.store.Orders().Create(m); err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	status, err := h.ctrl.SendOrder(c.Request().Context(), m)
	if err != nil {
		log.Warnf("api order %d dispatch failed: %s", m.ID, err.Error())
		if err := h.store.Orders().UpdateStatus(m.ID, model.OrderStatusError); err != nil {
			log.Errorf("api failed to mark order %d as errored: %v", m.ID, err)
		}
		m.Status = model.OrderStatusError

		if err == controlchannel.ErrDeviceNotConnected {
			return c.JSON(http.StatusConflict, resource.NewOrder(m))
		}
		return c.JSON(http.StatusBadGateway, resource.NewOrder(m))
	}

	m.Status = status
	return c.JSON(http.StatusCreated, resource.NewOrder(m))
}

func (h *Handler) handleGetOrderByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	m, err := h.store.Orders().FindByID(id)
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, err)
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, resource.NewOrder(m))
}
