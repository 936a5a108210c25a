// internal/service/report/service.go
package report

import (
	"context"
	"time"

	"flota-service/internal/domain/ticket"
	"flota-service/internal/domain/user"
	"flota-service/internal/domain/vehicle"
	xerrors "flota-service/internal/pkg/errors"
)

// FleetCounter aggregates the vehicle table per unit.
type FleetCounter interface {
	CountByUnit(ctx context.Context) ([]vehicle.UnitCount, error)
}

type TicketCounter interface {
	CountByStatus(ctx context.Context) ([]ticket.StatusCount, error)
}

// Report is the admin dashboard snapshot.
type Report struct {
	Unidades       []vehicle.UnitCount  `json:"unidades"`
	TotalVehiculos int64                `json:"total_vehiculos"`
	Tickets        []ticket.StatusCount `json:"tickets"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

type Service struct {
	vehicles FleetCounter
	tickets  TicketCounter
}

func NewService(vehicles FleetCounter, tickets TicketCounter) *Service {
	return &Service{
		vehicles: vehicles,
		tickets:  tickets,
	}
}

// Build assembles the dashboard report. Admin only.
func (s *Service) Build(ctx context.Context, p user.Principal) (*Report, error) {
	if !p.Admin {
		return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "admin access required")
	}

	units, err := s.vehicles.CountByUnit(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, u := range units {
		total += u.Total
	}

	tickets, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		Unidades:       units,
		TotalVehiculos: total,
		Tickets:        tickets,
		GeneratedAt:    time.Now(),
	}, nil
}
