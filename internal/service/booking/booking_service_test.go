package booking

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) LookupFlight(ctx context.Context, destination string) (*domain.FlightRecord, error) {
	args := m.Called(ctx, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightRecord), args.Error(1)
}

func (m *MockCatalog) ListAccommodations(ctx context.Context, destination string) (domain.Accommodations, error) {
	args := m.Called(ctx, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Accommodations), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, bookings []domain.Booking) error {
	args := m.Called(ctx, bookings)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var (
	ctx       = context.Background()
	fixedNow  = time.Date(2024, time.March, 1, 15, 30, 0, 0, time.UTC)
	parisRec  = &domain.FlightRecord{FlightNumber: "QF1", Destination: "Paris", CostPerSeat: 250}
	parisStay = domain.Accommodations{
		{Location: "Paris", Name: "Hotel Lumiere", Address: "1 Rue A", CostPerNight: 120},
		{Location: "Paris", Name: "Le Petit", Address: "2 Rue B", CostPerNight: 90},
	}
)

func newTestService(catalog Catalog, store repository.BookingStore, opts ...BookingServiceOption) *BookingService {
	opts = append([]BookingServiceOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewBookingService(catalog, store, opts...)
}

func flightInput(customer string) CreateFlightBookingInput {
	return CreateFlightBookingInput{
		CustomerName:  customer,
		Destination:   "paris",
		DepartureDate: domain.Date(2024, time.May, 10),
		Passengers:    []string{"Alice", "Bob"},
	}
}

func holidayInput(customer string) CreateHolidayBookingInput {
	return CreateHolidayBookingInput{
		CustomerName:      customer,
		Destination:       "Paris",
		DepartureDate:     domain.Date(2024, time.May, 10),
		Passengers:        []string{"Alice", "Bob"},
		AccommodationName: "hotel lumiere",
		CheckIn:           domain.Date(2024, time.May, 10),
		CheckOut:          domain.Date(2024, time.May, 13),
	}
}

func TestCreateFlightBooking(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, "paris").Return(parisRec, nil)

	s := newTestService(catalog, new(MockStore))

	id, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.NoError(t, err)
	assert.Equal(t, domain.FirstBookingID, id)

	b, err := s.FindByID(id)
	require.NoError(t, err)
	fb, ok := b.(*domain.FlightBooking)
	require.True(t, ok)

	assert.Equal(t, domain.FirstInvoiceNo, fb.InvoiceNo)
	assert.Equal(t, "Carol", fb.CustomerName)
	assert.Equal(t, domain.Date(2024, time.March, 1), fb.BookingDate)
	assert.Equal(t, "QF1", fb.FlightNumber)
	assert.Equal(t, "Paris", fb.Destination)
	assert.Equal(t, 250.0, fb.SingleFlightCost)
	assert.Equal(t, 500.0, fb.Total())
	assert.False(t, s.IsHoliday(id))
	catalog.AssertExpectations(t)
}

func TestIdentifiersIncreaseTogether(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	s := newTestService(catalog, new(MockStore))

	first, err := s.CreateFlightBooking(ctx, flightInput("A"))
	require.NoError(t, err)
	second, err := s.CreateHolidayBooking(ctx, holidayInput("B"))
	require.NoError(t, err)
	third, err := s.CreateFlightBooking(ctx, flightInput("C"))
	require.NoError(t, err)

	assert.Equal(t, []int{1000, 1001, 1002}, []int{first, second, third})

	var invoices []int
	for _, b := range s.List() {
		invoices = append(invoices, b.Base().InvoiceNo)
	}
	assert.Equal(t, []int{9900, 9901, 9902}, invoices)
}

func TestCreateFlightBookingUnknownDestination(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, "Atlantis").
		Return(nil, domain.ErrDestinationNotFound)

	s := newTestService(catalog, new(MockStore))

	in := flightInput("Carol")
	in.Destination = "Atlantis"
	_, err := s.CreateFlightBooking(ctx, in)

	assert.ErrorIs(t, err, domain.ErrDestinationNotFound)
	assert.Empty(t, s.List())

	id, invoice := s.seq.Peek()
	assert.Equal(t, domain.FirstBookingID, id)
	assert.Equal(t, domain.FirstInvoiceNo, invoice)
}

func TestCreateFlightBookingCatalogFailure(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, "paris").Return(nil, errors.New("disk gone"))

	s := newTestService(catalog, new(MockStore))

	_, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "look up flight to paris")
	assert.NotErrorIs(t, err, domain.ErrDestinationNotFound)
}

func TestCreateFlightBookingRejectsInvalidInput(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)

	s := newTestService(catalog, new(MockStore))

	in := flightInput("Smith, J")
	_, err := s.CreateFlightBooking(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidField)

	in = flightInput("Carol")
	in.Passengers = nil
	_, err = s.CreateFlightBooking(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNoPassengers)

	assert.Empty(t, s.List())
}

func TestCreateHolidayBooking(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, "Paris").Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	s := newTestService(catalog, new(MockStore))

	id, err := s.CreateHolidayBooking(ctx, holidayInput("Dan"))
	require.NoError(t, err)
	assert.True(t, s.IsHoliday(id))

	b, err := s.FindByID(id)
	require.NoError(t, err)
	h := b.(*domain.HolidayBooking)

	assert.Equal(t, "Hotel Lumiere", h.AccommodationName)
	assert.Equal(t, "1 Rue A", h.AccommodationAddress)
	assert.Equal(t, 120.0, h.SingleNightCost)
	assert.Equal(t, 3, h.Nights())
	assert.Equal(t, 500.0, h.Flight.TotalCost)
	// 3 nights at 120 plus two seats at 250
	assert.Equal(t, 860.0, h.Total())
}

func TestCreateHolidayBookingUnknownAccommodation(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, "Paris").Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	s := newTestService(catalog, new(MockStore))

	in := holidayInput("Dan")
	in.AccommodationName = "Ritz"
	_, err := s.CreateHolidayBooking(ctx, in)

	assert.ErrorIs(t, err, domain.ErrAccommodationNotFound)
	assert.Empty(t, s.List())
}

func TestCreateHolidayBookingInvalidStay(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, "Paris").Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	s := newTestService(catalog, new(MockStore))

	in := holidayInput("Dan")
	in.CheckIn = domain.Date(2024, time.May, 9)
	_, err := s.CreateHolidayBooking(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidStay)

	// a failed holiday must not consume an identifier
	catalog.On("LookupFlight", mock.Anything, "paris").Return(parisRec, nil)
	id, err := s.CreateFlightBooking(ctx, flightInput("Eve"))
	require.NoError(t, err)
	assert.Equal(t, domain.FirstBookingID, id)
}

func TestAccommodationNames(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)
	catalog.On("ListAccommodations", mock.Anything, "Oslo").Return(domain.Accommodations{}, nil)

	s := newTestService(catalog, new(MockStore))

	names, err := s.AccommodationNames(ctx, "Paris")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hotel Lumiere", "Le Petit"}, names)

	names, err = s.AccommodationNames(ctx, "Oslo")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEnsureDestinationServed(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, "Paris").Return(parisRec, nil)
	catalog.On("LookupFlight", mock.Anything, "Atlantis").Return(nil, domain.ErrDestinationNotFound)

	s := newTestService(catalog, new(MockStore))

	assert.NoError(t, s.EnsureDestinationServed(ctx, "Paris"))
	assert.ErrorIs(t, s.EnsureDestinationServed(ctx, "Atlantis"), domain.ErrDestinationNotFound)
}

func TestUpdateHolidayStay(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, "Paris").Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	s := newTestService(catalog, new(MockStore))

	id, err := s.CreateHolidayBooking(ctx, holidayInput("Dan"))
	require.NoError(t, err)

	err = s.UpdateHolidayStay(ctx, id, domain.Date(2024, time.May, 8), domain.Date(2024, time.May, 9))
	require.NoError(t, err)

	b, _ := s.FindByID(id)
	h := b.(*domain.HolidayBooking)
	assert.Equal(t, 1, h.Nights())
	assert.Equal(t, domain.Date(2024, time.May, 8), h.Flight.DepartureDate)
	assert.Equal(t, 620.0, h.Total())

	departure, err := s.DepartureDate(id)
	require.NoError(t, err)
	assert.Equal(t, domain.Date(2024, time.May, 8), departure)
}

func TestUpdateHolidayStayErrors(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	s := newTestService(catalog, new(MockStore))

	flightID, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.NoError(t, err)
	holidayID, err := s.CreateHolidayBooking(ctx, holidayInput("Dan"))
	require.NoError(t, err)
	before := s.List()

	checkIn, checkOut := domain.Date(2024, time.June, 1), domain.Date(2024, time.June, 3)

	err = s.UpdateHolidayStay(ctx, 4242, checkIn, checkOut)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	err = s.UpdateHolidayStay(ctx, flightID, checkIn, checkOut)
	assert.ErrorIs(t, err, domain.ErrNotHolidayBooking)

	err = s.UpdateHolidayStay(ctx, holidayID, checkOut, checkIn)
	assert.ErrorIs(t, err, domain.ErrInvalidStay)

	assert.Equal(t, before, s.List())
	h := before[1].(*domain.HolidayBooking)
	assert.Equal(t, domain.Date(2024, time.May, 13), h.CheckOut)
	assert.Equal(t, 860.0, h.Total())
}

func TestDepartureDateRequiresHoliday(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	s := newTestService(catalog, new(MockStore))

	flightID, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.NoError(t, err)
	holidayID, err := s.CreateHolidayBooking(ctx, holidayInput("Dan"))
	require.NoError(t, err)

	_, err = s.DepartureDate(flightID)
	assert.ErrorIs(t, err, domain.ErrNotHolidayBooking)
	assert.ErrorIs(t, s.SetDepartureDate(flightID, fixedNow), domain.ErrNotHolidayBooking)
	assert.ErrorIs(t, s.SetDepartureDate(1, fixedNow), domain.ErrBookingNotFound)

	require.NoError(t, s.SetDepartureDate(holidayID, domain.Date(2024, time.May, 1)))
	departure, err := s.DepartureDate(holidayID)
	require.NoError(t, err)
	assert.Equal(t, domain.Date(2024, time.May, 1), departure)
}

func TestExistsAndFind(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)

	s := newTestService(catalog, new(MockStore))
	id, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.NoError(t, err)

	assert.True(t, s.Exists(id))
	assert.False(t, s.Exists(id+1))
	assert.False(t, s.IsHoliday(id+1))

	_, err = s.FindByID(id + 1)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestListReturnsCopy(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)

	s := newTestService(catalog, new(MockStore))
	_, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.NoError(t, err)

	list := s.List()
	list[0] = nil
	assert.NotNil(t, s.List()[0])
}

func TestPrintOperations(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)

	s := newTestService(catalog, new(MockStore))

	var buf bytes.Buffer
	s.PrintAll(&buf)
	assert.Contains(t, buf.String(), "There are no bookings recorded.")

	id, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, s.PrintInvoice(&buf, id))
	assert.Contains(t, buf.String(), "TOTAL COST: $500.00")

	buf.Reset()
	require.NoError(t, s.PrintItinerary(&buf, id))
	assert.Contains(t, buf.String(), "Itinerary for Booking 1000")

	assert.ErrorIs(t, s.PrintInvoice(&buf, 1), domain.ErrBookingNotFound)
	assert.ErrorIs(t, s.PrintItinerary(&buf, 1), domain.ErrBookingNotFound)
}

func TestLoadEmptyKeepsInitialSequence(t *testing.T) {
	store := new(MockStore)
	store.On("Load", mock.Anything).Return([]domain.Booking{}, nil)

	s := newTestService(new(MockCatalog), store)
	require.NoError(t, s.Load(ctx))

	id, invoice := s.seq.Peek()
	assert.Equal(t, 1000, id)
	assert.Equal(t, 9900, invoice)
	store.AssertExpectations(t)
}

func TestLoadReseedsSequence(t *testing.T) {
	departure := domain.Date(2024, time.May, 10)
	stored := []domain.Booking{
		domain.NewFlightBooking(
			domain.BookingBase{ID: 1003, CustomerName: "A", BookingDate: departure, InvoiceNo: 9905},
			domain.Flight{FlightNumber: "QF1", Destination: "Paris", DepartureDate: departure, Passengers: []string{"A"}},
		),
		domain.NewFlightBooking(
			domain.BookingBase{ID: 1007, CustomerName: "B", BookingDate: departure, InvoiceNo: 9901},
			domain.Flight{FlightNumber: "QF1", Destination: "Paris", DepartureDate: departure, Passengers: []string{"B"}},
		),
	}
	store := new(MockStore)
	store.On("Load", mock.Anything).Return(stored, nil)

	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)

	s := newTestService(catalog, store)
	require.NoError(t, s.Load(ctx))
	assert.Len(t, s.List(), 2)

	id, err := s.CreateFlightBooking(ctx, flightInput("C"))
	require.NoError(t, err)
	assert.Equal(t, 1008, id)

	b, _ := s.FindByID(id)
	assert.Equal(t, 9906, b.Base().InvoiceNo)
}

func TestLoadFailureKeepsCollection(t *testing.T) {
	store := new(MockStore)
	store.On("Load", mock.Anything).Return(nil, errors.New("corrupt"))

	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)

	s := newTestService(catalog, store)
	_, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.NoError(t, err)

	err = s.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load bookings")
	assert.Len(t, s.List(), 1)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewFileBookingStore(
		filepath.Join(dir, "FlightBookings.txt"),
		filepath.Join(dir, "HolidayBookings.txt"),
	)

	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	s := newTestService(catalog, store)
	_, err := s.CreateFlightBooking(ctx, flightInput("Carol"))
	require.NoError(t, err)
	_, err = s.CreateHolidayBooking(ctx, holidayInput("Dan"))
	require.NoError(t, err)
	_, err = s.CreateFlightBooking(ctx, flightInput("Eve"))
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx))

	reloaded := newTestService(catalog, store)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, s.List(), reloaded.List())

	id, invoice := reloaded.seq.Peek()
	assert.Equal(t, 1003, id)
	assert.Equal(t, 9903, invoice)
}

func TestSaveFailure(t *testing.T) {
	store := new(MockStore)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only"))

	s := newTestService(new(MockCatalog), store)
	err := s.Save(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save bookings")
}

func TestEventsPublished(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupFlight", mock.Anything, mock.Anything).Return(parisRec, nil)
	catalog.On("ListAccommodations", mock.Anything, "Paris").Return(parisStay, nil)

	producer := new(MockProducer)
	producer.On("Publish", mock.Anything, "bookings", "1000", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && e.Kind == "HOLIDAY" &&
			e.Accommodation == "Hotel Lumiere" && e.CheckOut == "2024-05-13" && e.EventID != ""
	})).Return(nil).Once()
	producer.On("Publish", mock.Anything, "bookings", "1000", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventHolidayStayUpdated && e.CheckOut == "2024-05-12" && e.TotalCost == 740
	})).Return(errors.New("broker down")).Once()

	s := newTestService(catalog, new(MockStore), WithProducer(producer, "bookings"))

	id, err := s.CreateHolidayBooking(ctx, holidayInput("Dan"))
	require.NoError(t, err)

	// a publish failure does not fail the update
	err = s.UpdateHolidayStay(ctx, id, domain.Date(2024, time.May, 10), domain.Date(2024, time.May, 12))
	require.NoError(t, err)

	producer.AssertExpectations(t)
}
