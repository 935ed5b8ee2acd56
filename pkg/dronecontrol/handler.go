package dronecontrol

import (
	"github.com/gobwas/ws"
	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"

	"github.com/skyrent/fleetlink/pkg/dronecontrol/controlchannel"
)

// Handler contains all properties to serve the drone channel
type Handler struct {
	ctrl *controlchannel.Controller
}

// NewHandler create a new drone channel handler
func NewHandler(ctrl *controlchannel.Controller) *Handler {
	return &Handler{
		ctrl: ctrl,
	}
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register dronecontrol routes")
	api := e.Group("/dronecontrol")
	api.Any("/v1", h.controlChannelHandler())
}

func (h *Handler) controlChannelHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			return err
		}
		defer conn.Close()

		terminateCh := make(chan struct{})

		cc := h.ctrl.NewControlChannel(conn, terminateCh)
		defer cc.Close()

		// The handshake happens before any frame is accepted. Rejections
		// are answered with an abort frame and a graceful close.
		sessID, details, err := h.ctrl.RegisterSession(cc, c.QueryParams())
		if err != nil {
			if e, ok := err.(*controlchannel.RejectionError); ok {
				cc.AbortAndClose(e.Reason, e.Details)
			} else {
				log.Errorf("dronecontrol handshake failed: %s", err.Error())
				cc.AbortAndClose(controlchannel.RejectReasonServer, nil)
			}
			<-terminateCh
			return nil
		}

		cc.Welcome(sessID, details)

		<-terminateCh

		log.Debug("handler exit control channel handler func")
		return nil
	}
}
