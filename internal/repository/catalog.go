package repository

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

// FlightCatalog finds the flight serving a destination.
type FlightCatalog interface {
	FindByDestination(ctx context.Context, destination string) (*domain.FlightRecord, error)
}

// AccommodationCatalog lists the accommodations available at a destination.
type AccommodationCatalog interface {
	ListByLocation(ctx context.Context, location string) (domain.Accommodations, error)
}

const (
	flightFieldSep        = ","
	accommodationFieldSep = "/"

	// maxLineSize bounds a single line in every file this package reads.
	maxLineSize = 1024 * 1024
)

// FileFlightCatalog reads "flightNumber,destination,costPerSeat" lines. The
// file is read in full on every lookup.
type FileFlightCatalog struct {
	path string
}

func NewFileFlightCatalog(path string) *FileFlightCatalog {
	return &FileFlightCatalog{path: path}
}

// FindByDestination returns the last record whose destination matches,
// ignoring case, or domain.ErrDestinationNotFound.
func (c *FileFlightCatalog) FindByDestination(ctx context.Context, destination string) (*domain.FlightRecord, error) {
	var found *domain.FlightRecord
	err := scanLines(ctx, c.path, func(lineNo int, line string) error {
		values := strings.Split(line, flightFieldSep)
		if len(values) < 3 {
			return fmt.Errorf("%s:%d: expected 3 fields, got %d", c.path, lineNo, len(values))
		}
		if !strings.EqualFold(values[1], destination) {
			return nil
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(values[2]), 64)
		if err != nil {
			return fmt.Errorf("%s:%d: bad seat cost: %w", c.path, lineNo, err)
		}
		found = &domain.FlightRecord{FlightNumber: values[0], Destination: values[1], CostPerSeat: cost}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDestinationNotFound, destination)
	}
	return found, nil
}

// FileAccommodationCatalog reads "location/name/address/costPerNight" lines.
type FileAccommodationCatalog struct {
	path string
}

func NewFileAccommodationCatalog(path string) *FileAccommodationCatalog {
	return &FileAccommodationCatalog{path: path}
}

// ListByLocation returns every accommodation at location in file order. No
// match is not an error.
func (c *FileAccommodationCatalog) ListByLocation(ctx context.Context, location string) (domain.Accommodations, error) {
	list := make(domain.Accommodations, 0)
	err := scanLines(ctx, c.path, func(lineNo int, line string) error {
		values := strings.Split(line, accommodationFieldSep)
		if len(values) < 4 {
			return fmt.Errorf("%s:%d: expected 4 fields, got %d", c.path, lineNo, len(values))
		}
		if !strings.EqualFold(values[0], location) {
			return nil
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(values[3]), 64)
		if err != nil {
			return fmt.Errorf("%s:%d: bad nightly cost: %w", c.path, lineNo, err)
		}
		list = append(list, domain.Accommodation{
			Location:     values[0],
			Name:         values[1],
			Address:      values[2],
			CostPerNight: cost,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// scanLines calls fn for each non-blank line of the file at path.
func scanLines(ctx context.Context, path string, fn func(lineNo int, line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

var (
	_ FlightCatalog        = (*FileFlightCatalog)(nil)
	_ AccommodationCatalog = (*FileAccommodationCatalog)(nil)
)
