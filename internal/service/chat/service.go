// internal/service/chat/service.go
package chat

import (
	"context"
	"fmt"
	"strings"

	"flota-service/internal/domain/chat"
	"flota-service/internal/domain/notification"
	"flota-service/internal/domain/user"
	wstypes "flota-service/internal/domain/websocket"
	xerrors "flota-service/internal/pkg/errors"

	"go.uber.org/zap"
)

const defaultThreadLimit = 50

type Repo interface {
	Save(ctx context.Context, m *chat.Message) error
	Thread(ctx context.Context, threadUser int64, limit int) ([]chat.Message, error)
	Threads(ctx context.Context) ([]int64, error)
}

// Relay pushes stored messages to live websocket connections.
type Relay interface {
	BroadcastChatMessage(userIDs []int64, data *wstypes.ChatMessageData)
}

// Notifier mirrors chat activity into the notification feed so offline
// participants still see it.
type Notifier interface {
	NotifyAdmins(ctx context.Context, t notification.Type, title, message string)
	CreateAndPush(ctx context.Context, n *notification.Notification) error
}

type Service struct {
	repo     Repo
	relay    Relay
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repo, relay Relay, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		relay:    relay,
		notifier: notifier,
		logger:   logger,
	}
}

// Send stores one message and relays it. Non-admins always write into their
// own thread regardless of what the request claims.
func (s *Service) Send(ctx context.Context, p user.Principal, req *chat.SendRequest) (*chat.Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "empty message")
	}

	threadUser := p.ID
	if p.Admin {
		if req.ThreadUser <= 0 {
			return nil, xerrors.Wrap(xerrors.ErrValidation, "thread_user is required")
		}
		threadUser = req.ThreadUser
	}

	m := &chat.Message{
		ThreadUser: threadUser,
		FromUserID: p.ID,
		Body:       body,
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}

	if s.relay != nil {
		s.relay.BroadcastChatMessage([]int64{threadUser, p.ID}, &wstypes.ChatMessageData{
			ID:         m.ID,
			ThreadUser: m.ThreadUser,
			FromUserID: m.FromUserID,
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
		})
	}

	s.notifyCounterpart(p, m)

	return m, nil
}

// notifyCounterpart runs outside the request path; chat delivery never
// fails because the notification side did.
func (s *Service) notifyCounterpart(p user.Principal, m *chat.Message) {
	if s.notifier == nil {
		return
	}

	ctx := context.Background()
	if p.Admin {
		go func() {
			n := &notification.Notification{
				UserID:  m.ThreadUser,
				Title:   "Nuevo mensaje",
				Message: m.Body,
				Type:    notification.TypeChatMessage,
			}
			if err := s.notifier.CreateAndPush(ctx, n); err != nil {
				s.logger.Warn("failed to notify chat user", zap.Int64("user_id", m.ThreadUser), zap.Error(err))
			}
		}()
		return
	}

	go s.notifier.NotifyAdmins(ctx, notification.TypeChatMessage,
		"Nuevo mensaje de soporte",
		fmt.Sprintf("Usuario %d: %s", m.FromUserID, m.Body),
	)
}

// Thread returns the recent messages of one thread, oldest first.
func (s *Service) Thread(ctx context.Context, p user.Principal, threadUser int64, limit int) ([]chat.Message, error) {
	if !p.Admin {
		threadUser = p.ID
	}
	if threadUser <= 0 {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "thread_user is required")
	}
	if limit < 1 || limit > 200 {
		limit = defaultThreadLimit
	}
	return s.repo.Thread(ctx, threadUser, limit)
}

// Threads lists active threads for the admin inbox.
func (s *Service) Threads(ctx context.Context, p user.Principal) ([]int64, error) {
	if !p.Admin {
		return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "admin access required")
	}
	return s.repo.Threads(ctx)
}
