package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PGFlightCatalog serves flight reference data from the flight_records table.
// Rows are ordered by id so the most recently loaded row wins, matching the
// file catalog.
type PGFlightCatalog struct {
	db RowQuerier
}

// RowQuerier is the part of *pgxpool.Pool the catalog needs.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const findFlightByDestinationQuery = `SELECT flight_number, destination, cost_per_seat FROM flight_records WHERE lower(destination) = lower($1) ORDER BY id DESC LIMIT 1`

func NewPGFlightCatalog(db RowQuerier) *PGFlightCatalog {
	return &PGFlightCatalog{db: db}
}

func (r *PGFlightCatalog) FindByDestination(ctx context.Context, destination string) (*domain.FlightRecord, error) {
	row := r.db.QueryRow(ctx, findFlightByDestinationQuery, destination)
	var rec domain.FlightRecord
	if err := row.Scan(&rec.FlightNumber, &rec.Destination, &rec.CostPerSeat); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDestinationNotFound, destination)
		}
		return nil, fmt.Errorf("query flight to %s: %w", destination, err)
	}
	return &rec, nil
}

var _ FlightCatalog = (*PGFlightCatalog)(nil)
