package ticket

import (
	"context"
	"testing"
	"time"

	"flota-service/internal/domain/notification"
	"flota-service/internal/domain/ticket"
	"flota-service/internal/domain/user"
	xerrors "flota-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	tickets []ticket.Ticket
	nextID  int64
}

func (f *fakeRepo) Create(_ context.Context, t *ticket.Ticket) error {
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	f.tickets = append(f.tickets, *t)
	return nil
}

func (f *fakeRepo) FindByReferencia(_ context.Context, referencia string) (*ticket.Ticket, error) {
	for i := range f.tickets {
		if f.tickets[i].Referencia == referencia {
			t := f.tickets[i]
			return &t, nil
		}
	}
	return nil, xerrors.Wrap(xerrors.ErrNotFound, "ticket")
}

func (f *fakeRepo) List(_ context.Context, estado ticket.Status) ([]ticket.Ticket, error) {
	out := []ticket.Ticket{}
	for _, t := range f.tickets {
		if estado == "" || t.Estado == estado {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) Close(_ context.Context, referencia string) error {
	for i := range f.tickets {
		if f.tickets[i].Referencia == referencia && f.tickets[i].Estado == ticket.StatusOpen {
			f.tickets[i].Estado = ticket.StatusClosed
			return nil
		}
	}
	return xerrors.Wrap(xerrors.ErrNotFound, "open ticket")
}

func (f *fakeRepo) CountByStatus(context.Context) ([]ticket.StatusCount, error) {
	counts := map[ticket.Status]int64{}
	for _, t := range f.tickets {
		counts[t.Estado]++
	}
	out := []ticket.StatusCount{}
	for estado, total := range counts {
		out = append(out, ticket.StatusCount{Estado: estado, Total: total})
	}
	return out, nil
}

type fakeNotifier struct {
	calls chan notification.Type
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, t notification.Type, _, _ string) {
	f.calls <- t
}

var (
	admin   = user.Principal{ID: 1, Admin: true}
	regular = user.Principal{ID: 2, Unidad: "UP1"}
)

func TestCreateAssignsReferenciaAndNotifies(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{calls: make(chan notification.Type, 1)}
	svc := NewService(repo, notifier, zap.NewNop())

	created, err := svc.Create(context.Background(), &ticket.CreateRequest{
		Nombre:  "Juan Perez",
		Email:   "JUAN@example.com",
		Mensaje: "no puedo entrar",
	})
	require.NoError(t, err)
	assert.Len(t, created.Referencia, 26) // ULID
	assert.Equal(t, ticket.StatusOpen, created.Estado)
	assert.Equal(t, "juan@example.com", created.Email)

	select {
	case typ := <-notifier.calls:
		assert.Equal(t, notification.TypeTicketOpened, typ)
	case <-time.After(time.Second):
		t.Fatal("expected admin notification")
	}
}

func TestCreateRejectsEmptyMessage(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), &ticket.CreateRequest{
		Nombre: "X", Email: "x@x.com", Mensaje: "  ",
	})
	assert.True(t, xerrors.Is(err, xerrors.ErrValidation))
}

func TestGetByReferencia(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), &ticket.CreateRequest{
		Nombre: "Ana", Email: "ana@x.com", Mensaje: "consulta",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.Referencia)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(context.Background(), "01ZZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.True(t, xerrors.Is(err, xerrors.ErrNotFound))
}

func TestListAdminOnlyAndStatusValidated(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, zap.NewNop())

	_, err := svc.List(context.Background(), regular, "")
	assert.True(t, xerrors.Is(err, xerrors.ErrPermissionDenied))

	_, err = svc.List(context.Background(), admin, "pending")
	assert.True(t, xerrors.Is(err, xerrors.ErrValidation))

	_, err = svc.List(context.Background(), admin, "open")
	assert.NoError(t, err)
}

func TestCloseIsIdempotentOnlyForOpenTickets(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), &ticket.CreateRequest{
		Nombre: "Ana", Email: "ana@x.com", Mensaje: "consulta",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Close(context.Background(), admin, created.Referencia))

	err = svc.Close(context.Background(), admin, created.Referencia)
	assert.True(t, xerrors.Is(err, xerrors.ErrNotFound))

	err = svc.Close(context.Background(), regular, created.Referencia)
	assert.True(t, xerrors.Is(err, xerrors.ErrPermissionDenied))
}
