package api

import (
	"encoding/json"
	"errors"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	customlog "github.com/MahiRanka/dimos-unitree/pkg/log"
	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
)

// ControlWebSocketHandler consumes key transitions from the operator
// UI and feeds them into the shared key-state poller. Every held key
// is released when the connection goes away.
func ControlWebSocketHandler(conn *websocket.Conn, keys *KeyStatePoller, logger customlog.Logger) {
	logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())
	defer keys.Release()

	var (
		mt  int
		msg []byte
		err error
	)
	for {
		if mt, msg, err = conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Control WS read error: %v", err)
			} else {
				// Don't log normal closures as errors
				if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
					logger.Infof("Control WS connection closed: %v", err)
				} else {
					logger.Infof("Control WS connection closed normally.")
				}
			}
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text Control WS message type: %d", mt)
			continue
		}

		var event KeyEventMsg
		if err := json.Unmarshal(msg, &event); err != nil {
			logger.Warnf("Failed to unmarshal key event from WS: %v. Message: %s", err, string(msg))
			continue
		}

		// Unrecognized keys are ignored, not errors.
		key := teleop.Key(event.Key)
		if _, known := teleop.KeyBindings()[key]; !known {
			logger.Debugf("Ignoring unrecognized key '%s'", event.Key)
			continue
		}

		keys.Set(key, event.Pressed)
		logger.Debugf("Key event: %s pressed=%v", key, event.Pressed)
	}
	logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
}
