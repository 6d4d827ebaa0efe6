// Package notifications fans out order events to subscribed push
// connections. Delivery is best-effort: a failed send never propagates to
// the event producer, and a gone channel is cleaned up on the spot.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// pushPayload is the wire shape delivered to subscribers.
type pushPayload struct {
	Type       string         `json:"type"`
	OrderID    string         `json:"order_id"`
	Status     string         `json:"status"`
	OccurredAt time.Time      `json:"occurred_at"`
	Detail     map[string]any `json:"detail,omitempty"`
}

// Service coordinates connection registration, per-order subscriptions and
// event fan-out.
type Service struct {
	subscriptions ports.SubscriptionRepository
	channel       ports.PushChannel
	connectionTTL time.Duration
	logger        *slog.Logger
}

// NewService creates the notification fan-out service.
func NewService(subscriptions ports.SubscriptionRepository, channel ports.PushChannel,
	connectionTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		subscriptions: subscriptions,
		channel:       channel,
		connectionTTL: connectionTTL,
		logger:        logger.With("component", "notifications"),
	}
}

// Connect registers a push connection for the authenticated caller.
func (s *Service) Connect(ctx context.Context, connectionID string,
	auth kernel.AuthContext) error {
	if err := auth.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.subscriptions.AddConnection(ctx, ports.Connection{
		ConnectionID: connectionID,
		UserID:       auth.UserID(),
		UserType:     auth.Role(),
		TenantID:     auth.TenantID(),
		ConnectedAt:  now,
		ExpiresAt:    now.Add(s.connectionTTL),
	})
}

// Disconnect removes a connection and all its subscriptions.
func (s *Service) Disconnect(ctx context.Context, connectionID string) error {
	return s.subscriptions.RemoveConnection(ctx, connectionID)
}

// Subscribe adds the connection to an order's audience.
func (s *Service) Subscribe(ctx context.Context, orderID kernel.UUID,
	connectionID string) error {
	return s.subscriptions.Subscribe(ctx, orderID, connectionID)
}

// Unsubscribe removes the connection from an order's audience.
func (s *Service) Unsubscribe(ctx context.Context, orderID kernel.UUID,
	connectionID string) error {
	return s.subscriptions.Unsubscribe(ctx, orderID, connectionID)
}

// Notify delivers an order event to every subscribed connection. Failed
// sends are logged and skipped; connections reporting ErrChannelGone are
// removed together with their subscriptions. Notify only returns an error
// when the subscriber list itself cannot be read.
func (s *Service) Notify(ctx context.Context, event order.Event) error {
	connectionIDs, err := s.subscriptions.GetSubscribers(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("get subscribers: %w", err)
	}
	if len(connectionIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(pushPayload{
		Type:       event.Type,
		OrderID:    event.OrderID.String(),
		Status:     event.Status.String(),
		OccurredAt: event.OccurredAt,
		Detail:     event.Detail,
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	seen := make(map[string]struct{}, len(connectionIDs))
	for _, connectionID := range connectionIDs {
		if _, dup := seen[connectionID]; dup {
			continue
		}
		seen[connectionID] = struct{}{}

		sendErr := s.channel.Send(ctx, connectionID, payload)
		switch {
		case sendErr == nil:
		case errors.Is(sendErr, ports.ErrChannelGone):
			if cleanupErr := s.subscriptions.RemoveConnection(ctx, connectionID); cleanupErr != nil {
				s.logger.Error("failed to remove gone connection",
					"connection_id", connectionID, "error", cleanupErr)
			} else {
				s.logger.Info("removed gone connection", "connection_id", connectionID)
			}
		default:
			s.logger.Error("failed to push notification",
				"connection_id", connectionID, "event", event.Type, "error", sendErr)
		}
	}

	return nil
}
