// internal/service/history/ledger.go
package history

import (
	"context"
	"fmt"
	"strconv"

	"flota-service/internal/domain/history"
	xerrors "flota-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Ledger manages the seven append-only child collections of a vehicle.
// Entries are only ever created and deleted, never updated in place.
type Ledger struct {
	repo   history.Repository
	logger *zap.Logger
}

func NewLedger(repo history.Repository, logger *zap.Logger) *Ledger {
	return &Ledger{repo: repo, logger: logger}
}

// ParseKind resolves a collection tag from the request path. Unknown tags
// are rejected here instead of turning into a missing-table lookup later.
func ParseKind(s string) (history.Kind, error) {
	k := history.Kind(s)
	if _, ok := history.SpecFor(k); !ok {
		return "", xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("unknown history collection %q", s))
	}
	return k, nil
}

// buildEntry validates the payload against the kind's spec. Numeric payloads
// must parse to a non-negative integer; invalid input is rejected rather
// than silently stored as null.
func buildEntry(kind history.Kind, vehiculoID int64, payload string) (*history.Entry, error) {
	spec, ok := history.SpecFor(kind)
	if !ok {
		return nil, xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("unknown history collection %q", kind))
	}
	if payload == "" {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "empty history payload")
	}

	e := &history.Entry{VehiculoID: vehiculoID, Kind: kind}
	if spec.Numeric {
		n, err := strconv.ParseInt(payload, 10, 64)
		if err != nil || n < 0 {
			return nil, xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("%s must be a non-negative integer", spec.PayloadCol))
		}
		e.Kilometraje = &n
	} else {
		e.Valor = &payload
	}
	return e, nil
}

// AppendTx inserts one entry inside the caller's transaction. The caller is
// responsible for having the parent row in the same transaction.
func (l *Ledger) AppendTx(ctx context.Context, tx pgx.Tx, kind history.Kind, vehiculoID int64, payload string) (*history.Entry, error) {
	e, err := buildEntry(kind, vehiculoID, payload)
	if err != nil {
		return nil, err
	}
	if err := l.repo.AppendTx(ctx, tx, e); err != nil {
		return nil, xerrors.Wrap(err, "failed to append history entry")
	}
	return e, nil
}

// AppendBulkTx inserts several entries of one kind, all-or-nothing within
// the enclosing transaction. Used for image URL lists at creation time.
func (l *Ledger) AppendBulkTx(ctx context.Context, tx pgx.Tx, kind history.Kind, vehiculoID int64, payloads []string) error {
	for _, p := range payloads {
		if _, err := buildEntry(kind, vehiculoID, p); err != nil {
			return err
		}
	}
	if err := l.repo.AppendBulkTx(ctx, tx, kind, vehiculoID, payloads); err != nil {
		return xerrors.Wrap(err, "failed to bulk-append history entries")
	}
	return nil
}

// Append inserts a single standalone entry outside any caller transaction.
func (l *Ledger) Append(ctx context.Context, kind history.Kind, vehiculoID int64, payload string) (*history.Entry, error) {
	e, err := buildEntry(kind, vehiculoID, payload)
	if err != nil {
		return nil, err
	}
	if err := l.repo.Append(ctx, e); err != nil {
		return nil, xerrors.Wrap(err, "failed to append history entry")
	}
	return e, nil
}

// DeleteLast removes the newest entry by the kind's ordering field.
func (l *Ledger) DeleteLast(ctx context.Context, kind history.Kind, vehiculoID int64) (*history.Entry, error) {
	if _, ok := history.SpecFor(kind); !ok {
		return nil, xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("unknown history collection %q", kind))
	}
	return l.repo.DeleteLast(ctx, kind, vehiculoID)
}

// DeleteOne removes exactly the entry matching both vehicle and entry id.
func (l *Ledger) DeleteOne(ctx context.Context, kind history.Kind, vehiculoID, entryID int64) (*history.Entry, error) {
	if _, ok := history.SpecFor(kind); !ok {
		return nil, xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("unknown history collection %q", kind))
	}
	return l.repo.DeleteOne(ctx, kind, vehiculoID, entryID)
}

// DeleteAll clears a collection for one vehicle and returns the number of
// rows removed. Zero is not an error.
func (l *Ledger) DeleteAll(ctx context.Context, kind history.Kind, vehiculoID int64) (int64, error) {
	if _, ok := history.SpecFor(kind); !ok {
		return 0, xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("unknown history collection %q", kind))
	}
	n, err := l.repo.DeleteAll(ctx, kind, vehiculoID)
	if err != nil {
		return 0, xerrors.Wrap(err, "failed to clear history collection")
	}
	l.logger.Info("history collection cleared",
		zap.String("kind", string(kind)),
		zap.Int64("vehiculo_id", vehiculoID),
		zap.Int64("removed", n))
	return n, nil
}

// List returns a fresh read of the collection, newest first.
func (l *Ledger) List(ctx context.Context, kind history.Kind, vehiculoID int64) ([]history.Entry, error) {
	if _, ok := history.SpecFor(kind); !ok {
		return nil, xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("unknown history collection %q", kind))
	}
	return l.repo.List(ctx, kind, vehiculoID)
}
