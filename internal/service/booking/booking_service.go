package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/printer"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	EnsureDestinationServed(ctx context.Context, destination string) error
	AccommodationNames(ctx context.Context, destination string) ([]string, error)
	CreateFlightBooking(ctx context.Context, input CreateFlightBookingInput) (int, error)
	CreateHolidayBooking(ctx context.Context, input CreateHolidayBookingInput) (int, error)
	UpdateHolidayStay(ctx context.Context, id int, checkIn, checkOut time.Time) error
	FindByID(id int) (domain.Booking, error)
	Exists(id int) bool
	IsHoliday(id int) bool
	List() []domain.Booking
	DepartureDate(id int) (time.Time, error)
	SetDepartureDate(id int, date time.Time) error
	PrintAll(w io.Writer)
	PrintInvoice(w io.Writer, id int) error
	PrintItinerary(w io.Writer, id int) error
	Load(ctx context.Context) error
	Save(ctx context.Context) error
}

// Catalog answers reference data questions for a destination.
type Catalog interface {
	LookupFlight(ctx context.Context, destination string) (*domain.FlightRecord, error)
	ListAccommodations(ctx context.Context, destination string) (domain.Accommodations, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateFlightBookingInput struct {
	CustomerName  string
	Destination   string
	DepartureDate time.Time
	Passengers    []string
}

type CreateHolidayBookingInput struct {
	CustomerName      string
	Destination       string
	DepartureDate     time.Time
	Passengers        []string
	AccommodationName string
	CheckIn           time.Time
	CheckOut          time.Time
}

// BookingService owns the ordered booking collection and the identifier
// sequence. It is not safe for concurrent use.
type BookingService struct {
	bookings []domain.Booking
	seq      *Sequence
	catalog  Catalog
	store    repository.BookingStore
	producer Producer
	topic    string
	now      func() time.Time
	logger   *zap.Logger
}

type BookingServiceOption func(*BookingService)

// WithProducer publishes booking events to topic.
func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLogger(logger *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func NewBookingService(catalog Catalog, store repository.BookingStore, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		bookings: make([]domain.Booking, 0),
		seq:      NewSequence(),
		catalog:  catalog,
		store:    store,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureDestinationServed fails with domain.ErrDestinationNotFound when no
// flight goes to destination.
func (s *BookingService) EnsureDestinationServed(ctx context.Context, destination string) error {
	_, err := s.lookupFlight(ctx, destination)
	return err
}

func (s *BookingService) AccommodationNames(ctx context.Context, destination string) ([]string, error) {
	list, err := s.catalog.ListAccommodations(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("list accommodations in %s: %w", destination, err)
	}
	return list.Names(), nil
}

func (s *BookingService) CreateFlightBooking(ctx context.Context, input CreateFlightBookingInput) (int, error) {
	if err := domain.ValidateName("customer name", input.CustomerName); err != nil {
		return 0, err
	}
	rec, err := s.lookupFlight(ctx, input.Destination)
	if err != nil {
		return 0, err
	}
	flight, err := domain.NewFlight(rec.FlightNumber, rec.Destination, input.DepartureDate, input.Passengers)
	if err != nil {
		return 0, err
	}

	b := domain.NewFlightBooking(s.nextBase(input.CustomerName), flight)
	b.CalculateCost(*rec)
	s.bookings = append(s.bookings, b)

	s.logger.Info("flight booking created",
		zap.Int("booking_id", b.ID),
		zap.String("destination", b.Destination),
		zap.Float64("total_cost", b.Total()),
	)
	s.publish(ctx, kafka.EventBookingCreated, b)
	return b.ID, nil
}

func (s *BookingService) CreateHolidayBooking(ctx context.Context, input CreateHolidayBookingInput) (int, error) {
	if err := domain.ValidateName("customer name", input.CustomerName); err != nil {
		return 0, err
	}
	rec, err := s.lookupFlight(ctx, input.Destination)
	if err != nil {
		return 0, err
	}
	flight, err := domain.NewFlight(rec.FlightNumber, rec.Destination, input.DepartureDate, input.Passengers)
	if err != nil {
		return 0, err
	}

	accommodations, err := s.catalog.ListAccommodations(ctx, input.Destination)
	if err != nil {
		return 0, fmt.Errorf("list accommodations in %s: %w", input.Destination, err)
	}
	acc, ok := accommodations.Find(input.AccommodationName)
	if !ok {
		return 0, fmt.Errorf("%w: %s in %s", domain.ErrAccommodationNotFound, input.AccommodationName, input.Destination)
	}

	h, err := domain.NewHolidayBooking(domain.BookingBase{}, flight,
		acc.Name, acc.Address, acc.CostPerNight, input.CheckIn, input.CheckOut)
	if err != nil {
		return 0, err
	}
	h.BookingBase = s.nextBase(input.CustomerName)
	h.CalculateCost(*rec)
	s.bookings = append(s.bookings, h)

	s.logger.Info("holiday booking created",
		zap.Int("booking_id", h.ID),
		zap.String("destination", h.Flight.Destination),
		zap.String("accommodation", h.AccommodationName),
		zap.Float64("total_cost", h.Total()),
	)
	s.publish(ctx, kafka.EventBookingCreated, h)
	return h.ID, nil
}

// UpdateHolidayStay moves the stay of holiday booking id and reprices it.
// The collection is unchanged when any step fails.
func (s *BookingService) UpdateHolidayStay(ctx context.Context, id int, checkIn, checkOut time.Time) error {
	h, err := s.findHoliday(id)
	if err != nil {
		return err
	}
	rec, err := s.lookupFlight(ctx, h.Flight.Destination)
	if err != nil {
		return err
	}
	if err := h.UpdateStay(checkIn, checkOut); err != nil {
		return err
	}
	h.CalculateCost(*rec)

	s.logger.Info("holiday stay updated",
		zap.Int("booking_id", h.ID),
		zap.Time("check_in", h.CheckIn),
		zap.Time("check_out", h.CheckOut),
		zap.Float64("total_cost", h.Total()),
	)
	s.publish(ctx, kafka.EventHolidayStayUpdated, h)
	return nil
}

func (s *BookingService) FindByID(id int) (domain.Booking, error) {
	for _, b := range s.bookings {
		if b.Base().ID == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", domain.ErrBookingNotFound, id)
}

func (s *BookingService) Exists(id int) bool {
	_, err := s.FindByID(id)
	return err == nil
}

func (s *BookingService) IsHoliday(id int) bool {
	_, err := s.findHoliday(id)
	return err == nil
}

// List returns the bookings in collection order.
func (s *BookingService) List() []domain.Booking {
	return append([]domain.Booking(nil), s.bookings...)
}

// DepartureDate returns the departure of a holiday booking's flight.
func (s *BookingService) DepartureDate(id int) (time.Time, error) {
	h, err := s.findHoliday(id)
	if err != nil {
		return time.Time{}, err
	}
	return h.Flight.DepartureDate, nil
}

func (s *BookingService) SetDepartureDate(id int, date time.Time) error {
	h, err := s.findHoliday(id)
	if err != nil {
		return err
	}
	h.Flight.SetDepartureDate(date)
	return nil
}

func (s *BookingService) PrintAll(w io.Writer) {
	printer.WriteAll(w, s.bookings)
}

func (s *BookingService) PrintInvoice(w io.Writer, id int) error {
	b, err := s.FindByID(id)
	if err != nil {
		return err
	}
	printer.WriteInvoice(w, b)
	return nil
}

func (s *BookingService) PrintItinerary(w io.Writer, id int) error {
	b, err := s.FindByID(id)
	if err != nil {
		return err
	}
	printer.WriteItinerary(w, b)
	return nil
}

// Load replaces the collection with the stored bookings, ordered by
// identifier, and continues the sequence above the highest stored values.
// On failure the current collection is kept.
func (s *BookingService) Load(ctx context.Context) error {
	bookings, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}
	s.bookings = bookings

	if len(bookings) > 0 {
		maxID, maxInvoice := 0, 0
		for _, b := range bookings {
			maxID = max(maxID, b.Base().ID)
			maxInvoice = max(maxInvoice, b.Base().InvoiceNo)
		}
		s.seq.Reseed(maxID, maxInvoice)
	}

	nextID, nextInvoice := s.seq.Peek()
	s.logger.Info("bookings loaded",
		zap.Int("count", len(bookings)),
		zap.Int("next_booking_id", nextID),
		zap.Int("next_invoice_no", nextInvoice),
	)
	return nil
}

// Save writes the collection in its current order.
func (s *BookingService) Save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.bookings); err != nil {
		return fmt.Errorf("save bookings: %w", err)
	}
	s.logger.Info("bookings saved", zap.Int("count", len(s.bookings)))
	return nil
}

func (s *BookingService) lookupFlight(ctx context.Context, destination string) (*domain.FlightRecord, error) {
	rec, err := s.catalog.LookupFlight(ctx, destination)
	if err != nil {
		if errors.Is(err, domain.ErrDestinationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("look up flight to %s: %w", destination, err)
	}
	return rec, nil
}

func (s *BookingService) findHoliday(id int) (*domain.HolidayBooking, error) {
	b, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	h, ok := b.(*domain.HolidayBooking)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrNotHolidayBooking, id)
	}
	return h, nil
}

func (s *BookingService) nextBase(customerName string) domain.BookingBase {
	id, invoiceNo := s.seq.Next()
	return domain.BookingBase{
		ID:           id,
		CustomerName: customerName,
		BookingDate:  domain.DateOf(s.now()),
		InvoiceNo:    invoiceNo,
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, b domain.Booking) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := newBookingEvent(eventType, b, s.now())
	key := fmt.Sprintf("%d", event.BookingID)
	if err := s.producer.Publish(ctx, s.topic, key, event); err != nil {
		s.logger.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.Int("booking_id", event.BookingID),
			zap.Error(err),
		)
	}
}

func newBookingEvent(eventType string, b domain.Booking, at time.Time) kafka.BookingEvent {
	base, leg := b.Base(), b.Leg()
	event := kafka.BookingEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		BookingID:     base.ID,
		InvoiceNo:     base.InvoiceNo,
		Kind:          string(b.Kind()),
		CustomerName:  base.CustomerName,
		FlightNumber:  leg.FlightNumber,
		Destination:   leg.Destination,
		DepartureDate: domain.FormatDate(leg.DepartureDate),
		Passengers:    append([]string(nil), leg.Passengers...),
		TotalCost:     b.Total(),
		OccurredAt:    at.UTC(),
	}
	if h, ok := b.(*domain.HolidayBooking); ok {
		event.Accommodation = h.AccommodationName
		event.CheckIn = domain.FormatDate(h.CheckIn)
		event.CheckOut = domain.FormatDate(h.CheckOut)
	}
	return event
}

var _ BookingUseCase = (*BookingService)(nil)
