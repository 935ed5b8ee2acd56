package controlchannel

import (
	"io"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	log "github.com/sirupsen/logrus"
)

func (cc *ControlChannel) inboxWorker() {
	// The handler waits on the terminate channel; whatever path exits the
	// read loop must release it.
	defer cc.terminate()

	state := ws.StateServerSide
	ch := wsutil.ControlFrameHandler(cc.conn, state)

	r := &wsutil.Reader{
		Source:         cc.conn,
		State:          state,
		CheckUTF8:      true,
		OnIntermediate: ch,
	}

	for {
		h, err := r.NextFrame()
		if err != nil {
			log.Errorf("websocket read message error: %v", err)
			return
		}

		// We received an operation control frame and handle it before
		// continuation.
		if h.OpCode.IsControl() {
			// Check for OpClose before handling the control frame. On
			// OpClose the socket was closed by the client. We can exit
			// our handler now.
			if h.OpCode == ws.OpClose {
				log.Info("websocket connection closed gracefully")
				return
			}

			if err = ch(h, r); err != nil {
				log.Errorf("websocket handles control frame error: %v", err)
				return
			}
			continue
		}

		req, err := io.ReadAll(r)
		if err != nil {
			log.Errorf("websocket read error: %v", err)
			return
		}

		if _, _, err = cc.HandleMessage(req); err != nil {
			log.Errorf("websocket handle request error: %v", err)
			return
		}
	}
}

func (cc *ControlChannel) outboxWorker() {
	state := ws.StateServerSide
	w := wsutil.NewWriter(cc.conn, state, 0)

	for {
		select {
		case res := <-cc.wsOutboxCh:
			log.Debugf("controlchannel has an outbox message with flag(%d): %s", res.Flag, string(res.Data))
			if done := cc.webSocketWrite(w, state, res); done {
				return
			}
		case <-cc.wsCloseCh:
			cc.webSocketCloseGraceful(w, state)
			return
		case <-cc.stopCh:
			return
		}
	}
}

// webSocketWrite sends one outbox message and reports whether the worker
// should stop.
func (cc *ControlChannel) webSocketWrite(w *wsutil.Writer, state ws.State, res *Response) bool {
	if res.Data != nil {
		if err := webSocketWriteText(cc.conn, w, state, res.Data); err != nil {
			log.Errorf("websocket write error: %s", err)
			cc.terminate()
			return true
		}
	}

	switch res.Flag {
	case FlagCloseGracefully:
		cc.webSocketCloseGraceful(w, state)
		return true
	case FlagTerminate:
		cc.terminate()
		return true
	}

	return false
}

func (cc *ControlChannel) webSocketCloseGraceful(w *wsutil.Writer, state ws.State) {
	log.Debug("websocket graceful close initiated")

	w.Reset(cc.conn, state, ws.OpClose)

	// Write empty string
	var err error
	if _, err = w.Write([]byte("")); err == nil {
		err = w.Flush()
	}
	if err != nil {
		log.Errorf("websocket write error: %s", err)
	}

	cc.terminate()
}

func webSocketWriteText(conn net.Conn, w *wsutil.Writer, state ws.State, data []byte) error {
	var err error

	w.Reset(conn, state, ws.OpText)
	if _, err = w.Write(data); err == nil {
		err = w.Flush()
	}

	return err
}
