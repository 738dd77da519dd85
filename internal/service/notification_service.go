package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Broadcaster pushes an event to every connected operator session. The
// websocket hub satisfies this; tests plug in a recording fake.
type Broadcaster interface {
	BroadcastMessage(message []byte)
}

// --- DTOs ---

type CreateNotificationRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=FEE_ASSIGNED PRICING_CHANGED SETTLEMENT_STATUS GENERAL"`
	MerchantID string `json:"merchant_id"`
	Title      string `json:"title" binding:"required"`
	Message    string `json:"message"`
}

type NotificationResponse struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	MerchantID *string `json:"merchant_id,omitempty"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Read       bool    `json:"read"`
	CreatedAt  string  `json:"created_at"`
}

// --- Interface ---

type NotificationService interface {
	Create(ctx context.Context, req CreateNotificationRequest) (NotificationResponse, error)
	List(ctx context.Context, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	CountUnread(ctx context.Context) (int64, error)
	// Notify records a system-generated notification and fans it out to
	// connected sessions; failures are logged, never propagated.
	Notify(ctx context.Context, kind string, merchantID *uuid.UUID, title, message string)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	hub              Broadcaster
	logger           zerolog.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, hub Broadcaster, logger zerolog.Logger) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, hub: hub, logger: logger}
}

// --- Implementation ---

func (s *notificationService) Create(ctx context.Context, req CreateNotificationRequest) (NotificationResponse, error) {
	notification := model.Notification{
		Kind:    req.Kind,
		Title:   req.Title,
		Message: req.Message,
	}

	if req.MerchantID != "" {
		parsed, err := uuid.Parse(req.MerchantID)
		if err != nil {
			return NotificationResponse{}, fmt.Errorf("invalid merchant_id: %w", err)
		}
		notification.MerchantID = &parsed
	}

	if err := s.notificationRepo.Create(ctx, &notification); err != nil {
		return NotificationResponse{}, fmt.Errorf("failed to create notification: %w", err)
	}

	s.broadcast(notification)
	return toNotificationResponse(notification), nil
}

func (s *notificationService) List(ctx context.Context, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	notifications, total, err := s.notificationRepo.List(ctx, unreadOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	res := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		res = append(res, toNotificationResponse(n))
	}
	return res, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid notification id")
	}
	return s.notificationRepo.MarkRead(ctx, parsed)
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	return s.notificationRepo.MarkAllRead(ctx)
}

func (s *notificationService) CountUnread(ctx context.Context) (int64, error) {
	return s.notificationRepo.CountUnread(ctx)
}

func (s *notificationService) Notify(ctx context.Context, kind string, merchantID *uuid.UUID, title, message string) {
	notification := model.Notification{
		Kind:       kind,
		MerchantID: merchantID,
		Title:      title,
		Message:    message,
	}

	if err := s.notificationRepo.Create(ctx, &notification); err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("failed to persist notification")
		return
	}
	s.broadcast(notification)
}

func (s *notificationService) broadcast(n model.Notification) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(toNotificationResponse(n))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal notification event")
		return
	}
	s.hub.BroadcastMessage(payload)
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.MerchantID != nil {
		id := n.MerchantID.String()
		resp.MerchantID = &id
	}
	return resp
}
