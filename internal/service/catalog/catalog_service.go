package catalog

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"go.uber.org/zap"
)

type CatalogUseCase interface {
	LookupFlight(ctx context.Context, destination string) (*domain.FlightRecord, error)
	ListAccommodations(ctx context.Context, destination string) (domain.Accommodations, error)
}

// Cache stores catalog answers per destination. Getters return nil, nil on a miss.
type Cache interface {
	GetFlight(ctx context.Context, destination string) (*domain.FlightRecord, error)
	SetFlight(ctx context.Context, destination string, rec domain.FlightRecord) error
	GetAccommodations(ctx context.Context, location string) (domain.Accommodations, error)
	SetAccommodations(ctx context.Context, location string, list domain.Accommodations) error
}

type CatalogService struct {
	flights        repository.FlightCatalog
	accommodations repository.AccommodationCatalog
	cache          Cache
	logger         *zap.Logger
}

type CatalogServiceOption func(*CatalogService)

func WithCache(cache Cache) CatalogServiceOption {
	return func(s *CatalogService) {
		s.cache = cache
	}
}

func WithLogger(logger *zap.Logger) CatalogServiceOption {
	return func(s *CatalogService) {
		s.logger = logger
	}
}

func NewCatalogService(
	flights repository.FlightCatalog,
	accommodations repository.AccommodationCatalog,
	opts ...CatalogServiceOption,
) *CatalogService {
	s := &CatalogService{
		flights:        flights,
		accommodations: accommodations,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupFlight returns the flight serving destination or an error wrapping
// domain.ErrDestinationNotFound. Cache failures fall through to the catalog.
func (s *CatalogService) LookupFlight(ctx context.Context, destination string) (*domain.FlightRecord, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlight(ctx, destination)
		if err != nil {
			s.logger.Warn("flight cache read failed", zap.String("destination", destination), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	rec, err := s.flights.FindByDestination(ctx, destination)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlight(ctx, destination, *rec); err != nil {
			s.logger.Warn("flight cache write failed", zap.String("destination", destination), zap.Error(err))
		}
	}
	return rec, nil
}

// ListAccommodations returns every accommodation at destination in catalog
// order; an empty list is not an error.
func (s *CatalogService) ListAccommodations(ctx context.Context, destination string) (domain.Accommodations, error) {
	if s.cache != nil {
		cached, err := s.cache.GetAccommodations(ctx, destination)
		if err != nil {
			s.logger.Warn("accommodation cache read failed", zap.String("destination", destination), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	list, err := s.accommodations.ListByLocation(ctx, destination)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetAccommodations(ctx, destination, list); err != nil {
			s.logger.Warn("accommodation cache write failed", zap.String("destination", destination), zap.Error(err))
		}
	}
	return list, nil
}

var _ CatalogUseCase = (*CatalogService)(nil)
