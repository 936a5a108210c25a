// internal/service/ticket/service.go
package ticket

import (
	"context"
	"fmt"
	"strings"

	"flota-service/internal/domain/notification"
	"flota-service/internal/domain/ticket"
	"flota-service/internal/domain/user"
	xerrors "flota-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, t *ticket.Ticket) error
	FindByReferencia(ctx context.Context, referencia string) (*ticket.Ticket, error)
	List(ctx context.Context, estado ticket.Status) ([]ticket.Ticket, error)
	Close(ctx context.Context, referencia string) error
	CountByStatus(ctx context.Context) ([]ticket.StatusCount, error)
}

type Notifier interface {
	NotifyAdmins(ctx context.Context, t notification.Type, title, message string)
}

type Service struct {
	repo     Repo
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repo, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Create opens a public support ticket. The ULID referencia is the only
// handle the anonymous requester gets back.
func (s *Service) Create(ctx context.Context, req *ticket.CreateRequest) (*ticket.Ticket, error) {
	mensaje := strings.TrimSpace(req.Mensaje)
	if mensaje == "" {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "empty message")
	}

	t := &ticket.Ticket{
		Referencia: ulid.Make().String(),
		Nombre:     strings.TrimSpace(req.Nombre),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Mensaje:    mensaje,
		Estado:     ticket.StatusOpen,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("ticket opened", zap.String("referencia", t.Referencia))

	if s.notifier != nil {
		go s.notifier.NotifyAdmins(context.Background(), notification.TypeTicketOpened,
			"Nuevo ticket de soporte",
			fmt.Sprintf("%s (%s): %s", t.Nombre, t.Email, t.Mensaje),
		)
	}

	return t, nil
}

// Get looks a ticket up by its public referencia.
func (s *Service) Get(ctx context.Context, referencia string) (*ticket.Ticket, error) {
	referencia = strings.TrimSpace(referencia)
	if referencia == "" {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "referencia is required")
	}
	return s.repo.FindByReferencia(ctx, referencia)
}

func (s *Service) List(ctx context.Context, p user.Principal, estado string) ([]ticket.Ticket, error) {
	if !p.Admin {
		return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "admin access required")
	}

	switch ticket.Status(estado) {
	case "", ticket.StatusOpen, ticket.StatusClosed:
	default:
		return nil, xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("unknown status %q", estado))
	}

	return s.repo.List(ctx, ticket.Status(estado))
}

func (s *Service) Close(ctx context.Context, p user.Principal, referencia string) error {
	if !p.Admin {
		return xerrors.Wrap(xerrors.ErrPermissionDenied, "admin access required")
	}

	if err := s.repo.Close(ctx, referencia); err != nil {
		return err
	}
	s.logger.Info("ticket closed", zap.String("referencia", referencia), zap.Int64("by", p.ID))
	return nil
}

func (s *Service) CountByStatus(ctx context.Context) ([]ticket.StatusCount, error) {
	return s.repo.CountByStatus(ctx)
}
