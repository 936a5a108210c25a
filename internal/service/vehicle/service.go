// internal/service/vehicle/service.go
package vehicle

import (
	"context"
	"fmt"

	"flota-service/internal/domain/history"
	"flota-service/internal/domain/notification"
	"flota-service/internal/domain/unit"
	"flota-service/internal/domain/user"
	"flota-service/internal/domain/vehicle"
	xerrors "flota-service/internal/pkg/errors"
	"flota-service/internal/service/access"
	historysvc "flota-service/internal/service/history"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TxBeginner opens database transactions. Satisfied by *postgres.DB.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Notifier fans an event out to admins after a successful write. Fan-out is
// best effort and runs outside the transaction; it must never fail the
// operation that triggered it.
type Notifier interface {
	NotifyAdmins(ctx context.Context, t notification.Type, title, message string)
}

// Service owns the vehicle aggregate: the parent row plus its seven history
// collections, treated as one consistency boundary.
type Service struct {
	repo     vehicle.Repository
	ledger   *historysvc.Ledger
	policy   *access.Policy
	db       TxBeginner
	notifier Notifier
	logger   *zap.Logger
}

func NewService(
	repo vehicle.Repository,
	ledger *historysvc.Ledger,
	policy *access.Policy,
	db TxBeginner,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		policy:   policy,
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// List returns one page of vehicles visible to the principal. Unit scope
// resolution: an explicit unit filter wins verbatim; otherwise non-admins
// are forced to their own unit; admins without a filter see every unit.
func (s *Service) List(ctx context.Context, filters *vehicle.ListFilters, p user.Principal) (*vehicle.Page, error) {
	if filters == nil {
		filters = &vehicle.ListFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = 10
	}

	if filters.Unidad != "" {
		filters.Unidad = unit.Normalize(filters.Unidad).String()
	} else if !p.Admin {
		// A non-admin without a unit assignment sees nothing; leaving the
		// filter empty would list the whole fleet.
		if p.Unidad == "" {
			return vehicle.NewPage([]vehicle.Doc{}, 0, filters.Page, filters.Limit), nil
		}
		filters.Unidad = p.Unidad.String()
	}

	docs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to list vehicles")
	}

	return vehicle.NewPage(docs, total, filters.Page, filters.Limit), nil
}

// GetByID loads one vehicle with its images. A vehicle outside the
// principal's unit reports not-found rather than forbidden so the response
// never leaks that another unit's record exists.
func (s *Service) GetByID(ctx context.Context, id int64, p user.Principal) (*vehicle.Doc, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanRead(p, doc.Title) {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("vehicle %d", id))
	}
	return doc, nil
}

// historyField pairs one optional request key with its collection.
type historyField struct {
	kind    history.Kind
	payload string
}

func historyFields(kilometros, service, rodado, reparaciones, descripcion, destino string) []historyField {
	fields := []historyField{
		{history.KindKilometraje, kilometros},
		{history.KindService, service},
		{history.KindRodado, rodado},
		{history.KindReparacion, reparaciones},
		{history.KindDescripcion, descripcion},
		{history.KindDestino, destino},
	}
	present := fields[:0]
	for _, f := range fields {
		if f.payload != "" {
			present = append(present, f)
		}
	}
	return present
}

// Create inserts the parent row and one history entry per supplied optional
// field, all inside one transaction. Any failure, including the permission
// check, rolls the whole set back.
func (s *Service) Create(ctx context.Context, req *vehicle.CreateRequest, p user.Principal) (*vehicle.Doc, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrTransaction, err.Error())
	}
	defer tx.Rollback(ctx)

	title := unit.Normalize(req.Title).String()
	if !s.policy.CanWrite(p, title) {
		return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, fmt.Sprintf("cannot create vehicle in unit %s", title))
	}

	v := &vehicle.Vehicle{
		Dominio: req.Dominio,
		Marca:   req.Marca,
		Modelo:  req.Modelo,
		Anio:    req.Anio,
		Tipo:    req.Tipo,
		Chasis:  req.Chasis,
		Motor:   req.Motor,
		Cedula:  req.Cedula,
		Title:   title,
		Chofer:  req.Chofer,
	}
	if err := s.repo.CreateTx(ctx, tx, v); err != nil {
		return nil, err
	}

	for _, f := range historyFields(req.Kilometros, req.Service, req.Rodado, req.Reparaciones, req.Descripcion, req.Destino) {
		if _, err := s.ledger.AppendTx(ctx, tx, f.kind, v.ID, f.payload); err != nil {
			return nil, err
		}
	}
	if len(req.Imagenes) > 0 {
		if err := s.ledger.AppendBulkTx(ctx, tx, history.KindImagen, v.ID, req.Imagenes); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrTransaction, err.Error())
	}

	s.logger.Info("vehicle created",
		zap.Int64("id", v.ID),
		zap.String("dominio", v.Dominio),
		zap.String("unidad", v.Title),
		zap.Int64("by", p.ID))
	s.fanOut(notification.TypeVehicleCreated, "Vehículo agregado",
		fmt.Sprintf("Se agregó el vehículo %s (%s)", v.Dominio, v.Title))

	return s.repo.FindByID(ctx, v.ID)
}

// Update applies the scalar keys of the payload to the parent row in place
// and appends one new history entry per history key. Existing history rows
// are never mutated. Empty values mean "not supplied" and are skipped.
func (s *Service) Update(ctx context.Context, id int64, req *vehicle.UpdateRequest, p user.Principal) (*vehicle.Doc, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrTransaction, err.Error())
	}
	defer tx.Rollback(ctx)

	v, err := s.repo.FindByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	// Unit mismatch reports not-found, same as the read path.
	if !s.policy.CanWrite(p, v.Title) {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("vehicle %d", id))
	}

	applyScalar(&v.Dominio, req.Dominio)
	applyScalar(&v.Marca, req.Marca)
	applyScalar(&v.Modelo, req.Modelo)
	applyScalar(&v.Tipo, req.Tipo)
	applyScalar(&v.Chasis, req.Chasis)
	applyScalar(&v.Motor, req.Motor)
	applyScalar(&v.Cedula, req.Cedula)
	applyScalar(&v.Chofer, req.Chofer)
	if req.Title != "" {
		newTitle := unit.Normalize(req.Title).String()
		if !s.policy.CanWrite(p, newTitle) {
			return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, fmt.Sprintf("cannot move vehicle to unit %s", newTitle))
		}
		v.Title = newTitle
	}
	if req.Anio != nil {
		v.Anio = *req.Anio
	}

	if err := s.repo.UpdateTx(ctx, tx, v); err != nil {
		return nil, err
	}

	for _, f := range historyFields(req.Kilometros, req.Service, req.Rodado, req.Reparaciones, req.Descripcion, req.Destino) {
		if _, err := s.ledger.AppendTx(ctx, tx, f.kind, v.ID, f.payload); err != nil {
			return nil, err
		}
	}
	if len(req.Imagenes) > 0 {
		if err := s.ledger.AppendBulkTx(ctx, tx, history.KindImagen, v.ID, req.Imagenes); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrTransaction, err.Error())
	}

	s.logger.Info("vehicle updated",
		zap.Int64("id", v.ID),
		zap.String("dominio", v.Dominio),
		zap.Int64("by", p.ID))
	s.fanOut(notification.TypeVehicleUpdated, "Vehículo actualizado",
		fmt.Sprintf("Se actualizó el vehículo %s (%s)", v.Dominio, v.Title))

	return s.repo.FindByID(ctx, v.ID)
}

// Delete removes the parent row; the child collections go with it via
// ON DELETE CASCADE on the vehiculo_id foreign keys.
func (s *Service) Delete(ctx context.Context, id int64, p user.Principal) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return xerrors.Wrap(xerrors.ErrTransaction, err.Error())
	}
	defer tx.Rollback(ctx)

	v, err := s.repo.FindByIDTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanWrite(p, v.Title) {
		return xerrors.Wrap(xerrors.ErrPermissionDenied, fmt.Sprintf("cannot delete vehicle in unit %s", v.Title))
	}

	if err := s.repo.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return xerrors.Wrap(xerrors.ErrTransaction, err.Error())
	}

	s.logger.Info("vehicle deleted", zap.Int64("id", id), zap.Int64("by", p.ID))
	return nil
}

// AppendHistory adds one standalone entry to a collection.
func (s *Service) AppendHistory(ctx context.Context, id int64, kind history.Kind, payload string, p user.Principal) (*history.Entry, error) {
	if err := s.checkWrite(ctx, id, p); err != nil {
		return nil, err
	}
	return s.ledger.Append(ctx, kind, id, payload)
}

// DeleteLastHistory removes the newest entry of a collection.
func (s *Service) DeleteLastHistory(ctx context.Context, id int64, kind history.Kind, p user.Principal) (*history.Entry, error) {
	if err := s.checkWrite(ctx, id, p); err != nil {
		return nil, err
	}
	return s.ledger.DeleteLast(ctx, kind, id)
}

// DeleteOneHistory removes a single entry matched by vehicle and entry id.
func (s *Service) DeleteOneHistory(ctx context.Context, id int64, kind history.Kind, entryID int64, p user.Principal) (*history.Entry, error) {
	if err := s.checkWrite(ctx, id, p); err != nil {
		return nil, err
	}
	return s.ledger.DeleteOne(ctx, kind, id, entryID)
}

// DeleteAllHistory clears a collection for one vehicle.
func (s *Service) DeleteAllHistory(ctx context.Context, id int64, kind history.Kind, p user.Principal) (int64, error) {
	if err := s.checkWrite(ctx, id, p); err != nil {
		return 0, err
	}
	return s.ledger.DeleteAll(ctx, kind, id)
}

// ListHistory returns a collection newest first, read-access checked.
func (s *Service) ListHistory(ctx context.Context, id int64, kind history.Kind, p user.Principal) ([]history.Entry, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanRead(p, doc.Title) {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("vehicle %d", id))
	}
	return s.ledger.List(ctx, kind, id)
}

// CountByUnit feeds the dashboard.
func (s *Service) CountByUnit(ctx context.Context, p user.Principal) ([]vehicle.UnitCount, error) {
	if !p.Admin {
		return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "dashboard is admin only")
	}
	return s.repo.CountByUnit(ctx)
}

func (s *Service) checkWrite(ctx context.Context, id int64, p user.Principal) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanWrite(p, doc.Title) {
		return xerrors.Wrap(xerrors.ErrPermissionDenied, fmt.Sprintf("vehicle %d is outside unit %s", id, p.Unidad))
	}
	return nil
}

func applyScalar(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (s *Service) fanOut(t notification.Type, title, message string) {
	if s.notifier == nil {
		return
	}
	go s.notifier.NotifyAdmins(context.Background(), t, title, message)
}
