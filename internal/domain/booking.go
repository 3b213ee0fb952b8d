package domain

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindFlight  Kind = "FLIGHT"
	KindHoliday Kind = "HOLIDAY"
)

// First values handed out by a fresh identifier sequence.
const (
	FirstBookingID = 1000
	FirstInvoiceNo = 9900
)

// reservedChars may not appear in names typed in by a customer: they delimit
// the reference catalogs and the booking files.
const reservedChars = "<>/,\r\n"

// Booking is implemented only by *FlightBooking and *HolidayBooking.
type Booking interface {
	Base() *BookingBase
	Kind() Kind
	Total() float64
	CalculateCost(rec FlightRecord)
	// Leg returns the flight the booking travels on.
	Leg() *Flight

	sealed()
}

// BookingBase carries the fields shared by every booking kind.
type BookingBase struct {
	ID           int
	CustomerName string
	BookingDate  time.Time
	InvoiceNo    int
}

func (b *BookingBase) Base() *BookingBase { return b }

func (b *BookingBase) sealed() {}

// Flight is the flight leg of a booking. A holiday owns its flight, so a
// Flight carries no identifier of its own.
type Flight struct {
	FlightNumber     string
	Destination      string
	DepartureDate    time.Time
	Passengers       []string
	SingleFlightCost float64
	TotalCost        float64
}

func NewFlight(flightNumber, destination string, departure time.Time, passengers []string) (Flight, error) {
	if len(passengers) == 0 {
		return Flight{}, ErrNoPassengers
	}
	for _, p := range passengers {
		if err := ValidateName("passenger name", p); err != nil {
			return Flight{}, err
		}
	}
	return Flight{
		FlightNumber:  flightNumber,
		Destination:   destination,
		DepartureDate: DateOf(departure),
		Passengers:    append([]string(nil), passengers...),
	}, nil
}

// CalculateCost prices every passenger at the catalog seat cost.
func (f *Flight) CalculateCost(rec FlightRecord) {
	f.SingleFlightCost = rec.CostPerSeat
	f.TotalCost = f.SingleFlightCost * float64(len(f.Passengers))
}

func (f *Flight) SetDepartureDate(date time.Time) {
	f.DepartureDate = DateOf(date)
}

func (f *Flight) PassengerCount() int {
	return len(f.Passengers)
}

type FlightBooking struct {
	BookingBase
	Flight
}

func NewFlightBooking(base BookingBase, flight Flight) *FlightBooking {
	return &FlightBooking{BookingBase: base, Flight: flight}
}

func (b *FlightBooking) Kind() Kind { return KindFlight }

func (b *FlightBooking) Total() float64 { return b.TotalCost }

func (b *FlightBooking) Leg() *Flight { return &b.Flight }

type HolidayBooking struct {
	BookingBase
	Flight               Flight
	AccommodationName    string
	AccommodationAddress string
	CheckIn              time.Time
	CheckOut             time.Time
	SingleNightCost      float64
	TotalCost            float64
}

// NewHolidayBooking bundles flight with a stay. Check-in may not precede the
// flight's departure and check-out may not precede check-in.
func NewHolidayBooking(
	base BookingBase,
	flight Flight,
	accommodationName string,
	accommodationAddress string,
	singleNightCost float64,
	checkIn, checkOut time.Time,
) (*HolidayBooking, error) {
	checkIn, checkOut = DateOf(checkIn), DateOf(checkOut)
	if checkIn.Before(flight.DepartureDate) {
		return nil, fmt.Errorf("%w: check-in %s is before departure %s",
			ErrInvalidStay, FormatDate(checkIn), FormatDate(flight.DepartureDate))
	}
	if checkOut.Before(checkIn) {
		return nil, fmt.Errorf("%w: check-out %s is before check-in %s",
			ErrInvalidStay, FormatDate(checkOut), FormatDate(checkIn))
	}
	return &HolidayBooking{
		BookingBase:          base,
		Flight:               flight,
		AccommodationName:    accommodationName,
		AccommodationAddress: accommodationAddress,
		CheckIn:              checkIn,
		CheckOut:             checkOut,
		SingleNightCost:      singleNightCost,
	}, nil
}

func (b *HolidayBooking) Kind() Kind { return KindHoliday }

func (b *HolidayBooking) Total() float64 { return b.TotalCost }

func (b *HolidayBooking) Leg() *Flight { return &b.Flight }

func (b *HolidayBooking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

func (b *HolidayBooking) AccommodationCost() float64 {
	return b.SingleNightCost * float64(b.Nights())
}

// CalculateCost reprices the owned flight and adds the stay.
func (b *HolidayBooking) CalculateCost(rec FlightRecord) {
	b.Flight.CalculateCost(rec)
	b.TotalCost = b.AccommodationCost() + b.Flight.TotalCost
}

// UpdateStay replaces the stay dates. When the new check-in is earlier than
// the departure, the departure moves back to the check-in day. The cost must
// be recalculated afterwards.
func (b *HolidayBooking) UpdateStay(checkIn, checkOut time.Time) error {
	checkIn, checkOut = DateOf(checkIn), DateOf(checkOut)
	if checkOut.Before(checkIn) {
		return fmt.Errorf("%w: check-out %s is before check-in %s",
			ErrInvalidStay, FormatDate(checkOut), FormatDate(checkIn))
	}
	if checkIn.Before(b.Flight.DepartureDate) {
		b.Flight.SetDepartureDate(checkIn)
	}
	b.CheckIn = checkIn
	b.CheckOut = checkOut
	return nil
}

// ValidateName rejects empty values and values containing file delimiters.
func ValidateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidField, field)
	}
	if strings.ContainsAny(value, reservedChars) {
		return fmt.Errorf("%w: %s %q contains a reserved character", ErrInvalidField, field, value)
	}
	return nil
}

var (
	_ Booking = (*FlightBooking)(nil)
	_ Booking = (*HolidayBooking)(nil)
)
