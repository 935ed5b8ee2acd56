package api

import (
	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"

	"github.com/skyrent/fleetlink/pkg/dronecontrol/controlchannel"
	"github.com/skyrent/fleetlink/pkg/storage"
)

// Handler contains all properties to serve the API
type Handler struct {
	ctrl  *controlchannel.Controller
	store storage.Interface
}

// NewHandler create a new API handler
func NewHandler(ctrl *controlchannel.Controller, store storage.Interface) *Handler {
	return &Handler{
		ctrl:  ctrl,
		store: store,
	}
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register API routes")
	api := e.Group("/api/v1")
	api.GET("/drones", h.handleFetchDrones)
	api.GET("/drones/:deviceId", h.handleGetDroneByDeviceID)
	api.GET("/drones/:deviceId/measurements", h.handleFetchMeasurements)

	api.POST("/orders", h.handleCreateOrder)
	api.GET("/orders/:id", h.handleGetOrderByID)
}
