package http

import (
	"context"
	"encoding/json"
	"net/http"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// The gateway terminates TLS and enforces origins before requests reach
// this service.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

type wsClientMessage struct {
	Action  string `json:"action"`
	OrderID string `json:"order_id"`
}

type wsAck struct {
	Type    string `json:"type"`
	Action  string `json:"action,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// ServeWebsocket handles GET /ws - upgrades the connection and serves
// subscribe/unsubscribe requests until the client disconnects. Pushed
// events flow to the socket through the hub; this loop only reads.
func (s *Server) ServeWebsocket(ctx echo.Context) error {
	auth := authFromContext(ctx)

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return badRequest(ctx, "Websocket upgrade failed")
	}

	connectionID := kernel.NewUUID().String()
	s.hub.Register(connectionID, conn)

	requestCtx := ctx.Request().Context()
	if err := s.notifications.Connect(requestCtx, connectionID, auth); err != nil {
		s.logger.Error("failed to register push connection", "error", err,
			"connection_id", connectionID)
		s.hub.Unregister(connectionID)
		return nil
	}

	defer func() {
		s.hub.Unregister(connectionID)
		if err := s.notifications.Disconnect(requestCtx, connectionID); err != nil {
			s.logger.Error("failed to clean up push connection", "error", err,
				"connection_id", connectionID)
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return nil
		}

		var message wsClientMessage
		if err := json.Unmarshal(payload, &message); err != nil {
			s.sendAck(requestCtx, connectionID, wsAck{
				Type:    "error",
				Message: "malformed message",
			})
			continue
		}

		orderID, err := kernel.UUIDFromString(message.OrderID)
		if err != nil {
			s.sendAck(requestCtx, connectionID, wsAck{
				Type:    "error",
				Action:  message.Action,
				Message: "invalid order id",
			})
			continue
		}

		switch message.Action {
		case "subscribe":
			err = s.notifications.Subscribe(requestCtx, orderID, connectionID)
		case "unsubscribe":
			err = s.notifications.Unsubscribe(requestCtx, orderID, connectionID)
		default:
			s.sendAck(requestCtx, connectionID, wsAck{
				Type:    "error",
				Action:  message.Action,
				Message: "unknown action",
			})
			continue
		}

		if err != nil {
			s.logger.Error("subscription change failed", "error", err,
				"action", message.Action, "order_id", message.OrderID)
			s.sendAck(requestCtx, connectionID, wsAck{
				Type:    "error",
				Action:  message.Action,
				OrderID: message.OrderID,
				Message: "subscription change failed",
			})
			continue
		}

		s.sendAck(requestCtx, connectionID, wsAck{
			Type:    "ack",
			Action:  message.Action,
			OrderID: message.OrderID,
		})
	}
}

// sendAck replies through the hub so control frames and pushed events
// share one write path.
func (s *Server) sendAck(ctx context.Context, connectionID string, ack wsAck) {
	payload, err := json.Marshal(ack)
	if err != nil {
		return
	}
	if err := s.hub.Send(ctx, connectionID, payload); err != nil {
		s.logger.Debug("failed to send ack", "error", err,
			"connection_id", connectionID)
	}
}
