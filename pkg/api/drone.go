package api

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/skyrent/fleetlink/pkg/api/resource"
	"github.com/skyrent/fleetlink/pkg/storage"
)

func (h *Handler) handleFetchDrones(c echo.Context) error {
	m, err := h.store.Drones().FetchAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	connected := func(deviceID string) bool {
		_, ok := h.ctrl.Registry().ConnID(deviceID)
		return ok
	}

	return c.JSON(http.StatusOK, resource.NewDroneList(m, connected))
}

func (h *Handler) handleGetDroneByDeviceID(c echo.Context) error {
	deviceID := c.Param("deviceId")

	m, err := h.store.Drones().FindByDeviceID(deviceID)
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, err)
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	_, connected := h.ctrl.Registry().ConnID(deviceID)

	return c.JSON(http.StatusOK, resource.NewDrone(m, connected))
}

func (h *Handler) handleFetchMeasurements(c echo.Context) error {
	deviceID := c.Param("deviceId")

	if _, err := h.store.Drones().FindByDeviceID(deviceID); err != nil {
		if err == storage.ErrNotFound {
			return c.JSON(http.StatusNotFound, err)
		}
		return c.JSON(http.StatusInternalServerError, err)
	}

	models, err := h.store.Measurements().FetchByDeviceID(deviceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, resource.NewMeasurementList(models))
}
