package report

import (
	"context"
	"testing"

	"flota-service/internal/domain/ticket"
	"flota-service/internal/domain/user"
	"flota-service/internal/domain/vehicle"
	xerrors "flota-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFleet struct {
	counts []vehicle.UnitCount
}

func (f *fakeFleet) CountByUnit(context.Context) ([]vehicle.UnitCount, error) {
	return f.counts, nil
}

type fakeTickets struct {
	counts []ticket.StatusCount
}

func (f *fakeTickets) CountByStatus(context.Context) ([]ticket.StatusCount, error) {
	return f.counts, nil
}

func TestBuildAdminOnly(t *testing.T) {
	svc := NewService(&fakeFleet{}, &fakeTickets{})

	_, err := svc.Build(context.Background(), user.Principal{ID: 2, Unidad: "UP1"})
	assert.True(t, xerrors.Is(err, xerrors.ErrPermissionDenied))
}

func TestBuildSumsUnitTotals(t *testing.T) {
	svc := NewService(
		&fakeFleet{counts: []vehicle.UnitCount{
			{Unidad: "DG", Total: 3},
			{Unidad: "UP1", Total: 7},
		}},
		&fakeTickets{counts: []ticket.StatusCount{
			{Estado: ticket.StatusOpen, Total: 2},
		}},
	)

	r, err := svc.Build(context.Background(), user.Principal{ID: 1, Admin: true})
	require.NoError(t, err)
	assert.Equal(t, int64(10), r.TotalVehiculos)
	assert.Len(t, r.Unidades, 2)
	assert.Len(t, r.Tickets, 1)
	assert.False(t, r.GeneratedAt.IsZero())
}
