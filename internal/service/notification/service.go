// internal/service/notification/service.go
package notification

import (
	"context"
	"fmt"

	"flota-service/internal/domain/notification"
	"flota-service/internal/domain/user"
	wstypes "flota-service/internal/domain/websocket"

	"go.uber.org/zap"
)

// Repo is the persistence surface this service needs.
type Repo interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListForUser(ctx context.Context, userID int64, filters *notification.ListFilters) ([]notification.Notification, int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}

// AdminLister resolves the recipients of an admin fan-out.
type AdminLister interface {
	ListAdmins(ctx context.Context) ([]user.User, error)
}

// Pusher delivers notifications to live websocket connections.
type Pusher interface {
	BroadcastNotification(userID int64, data *wstypes.NotificationData)
	BroadcastNotificationCount(userID int64, count int64)
}

// Mailer mirrors the notification by email when SMTP is configured.
type Mailer interface {
	Enabled() bool
	Send(to, subject, bodyHTML string) error
}

type Service struct {
	repo   Repo
	users  AdminLister
	hub    Pusher
	mailer Mailer
	logger *zap.Logger
}

func NewService(repo Repo, users AdminLister, hub Pusher, mailer Mailer, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		hub:    hub,
		mailer: mailer,
		logger: logger,
	}
}

// CreateAndPush stores one notification and pushes it to the user's live
// connections.
func (s *Service) CreateAndPush(ctx context.Context, n *notification.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.push(ctx, n)
	return nil
}

// NotifyAdmins fans one event out to every active admin: a notification row
// each, a websocket push, and an email mirror. Failures on one recipient do
// not stop the others.
func (s *Service) NotifyAdmins(ctx context.Context, t notification.Type, title, message string) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		s.logger.Error("failed to list admins for fan-out", zap.Error(err))
		return
	}

	for _, admin := range admins {
		n := &notification.Notification{
			UserID:  admin.ID,
			Title:   title,
			Message: message,
			Type:    t,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			s.logger.Error("failed to store admin notification",
				zap.Int64("user_id", admin.ID), zap.Error(err))
			continue
		}
		s.push(ctx, n)

		if s.mailer != nil && s.mailer.Enabled() {
			if err := s.mailer.Send(admin.Email, title, message); err != nil {
				s.logger.Warn("failed to email notification",
					zap.Int64("user_id", admin.ID), zap.Error(err))
			}
		}
	}
}

func (s *Service) push(ctx context.Context, n *notification.Notification) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastNotification(n.UserID, &wstypes.NotificationData{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	})
	if count, err := s.repo.UnreadCount(ctx, n.UserID); err == nil {
		s.hub.BroadcastNotificationCount(n.UserID, count)
	}
}

func (s *Service) List(ctx context.Context, userID int64, filters *notification.ListFilters) (*notification.ListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = 20
	}

	rows, total, err := s.repo.ListForUser(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filters.Limit
	if int(total)%filters.Limit > 0 {
		totalPages++
	}

	return &notification.ListResponse{
		Notifications: rows,
		Total:         total,
		Page:          filters.Page,
		Limit:         filters.Limit,
		TotalPages:    totalPages,
	}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		return err
	}
	if count, err := s.repo.UnreadCount(ctx, userID); err == nil && s.hub != nil {
		s.hub.BroadcastNotificationCount(userID, count)
	}
	return nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastNotificationCount(userID, 0)
	}
	return nil
}
