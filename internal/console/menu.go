package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"go.uber.org/zap"
)

const mainMenu = `
***** Travel Adventure Booking System *****
A) Book a flight
B) Book a holiday
C) View invoice
D) View itinerary
E) Print all bookings
F) Update holiday booking
X) Save and quit`

const interruptedNotice = "Interrupted. Saving bookings before exit."

// Menu drives the booking service from line-oriented input.
type Menu struct {
	bookings booking.BookingUseCase
	in       *bufio.Scanner
	out      io.Writer
	now      func() time.Time
	logger   *zap.Logger
}

type MenuOption func(*Menu)

func WithClock(now func() time.Time) MenuOption {
	return func(m *Menu) {
		m.now = now
	}
}

func WithLogger(logger *zap.Logger) MenuOption {
	return func(m *Menu) {
		m.logger = logger
	}
}

func NewMenu(bookings booking.BookingUseCase, in io.Reader, out io.Writer, opts ...MenuOption) *Menu {
	m := &Menu{
		bookings: bookings,
		in:       bufio.NewScanner(in),
		out:      out,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run loops until X is chosen, input ends or ctx is cancelled, then saves
// the bookings. The save runs even when ctx is already cancelled.
func (m *Menu) Run(ctx context.Context) error {
	m.println("Hello, welcome to Travel Adventure Booking System.")

	for {
		if ctx.Err() != nil {
			m.println(interruptedNotice)
			break
		}
		m.println(mainMenu)
		choice, err := m.prompt("Choice: ")
		if err != nil {
			break
		}

		switch strings.ToUpper(choice) {
		case "A":
			err = m.bookFlight(ctx)
		case "B":
			err = m.bookHoliday(ctx)
		case "C":
			err = m.viewInvoice()
		case "D":
			err = m.viewItinerary()
		case "E":
			m.bookings.PrintAll(m.out)
		case "F":
			err = m.updateHoliday(ctx)
		case "X":
		default:
			m.println("Unknown option.")
		}
		if errors.Is(err, io.EOF) || strings.EqualFold(choice, "X") {
			break
		}
	}

	if err := m.bookings.Save(context.WithoutCancel(ctx)); err != nil {
		m.println("There was an error saving to files.")
		return err
	}
	m.println("Bookings have been saved to file.")
	m.println("Goodbye.")
	return nil
}

func (m *Menu) bookFlight(ctx context.Context) error {
	m.println("***** Book a Flight *****")
	destination, err := m.prompt("Destination: ")
	if err != nil {
		return err
	}
	if err := m.bookings.EnsureDestinationServed(ctx, destination); err != nil {
		m.report(err)
		return nil
	}
	m.println("Flight to destination exists.")

	name, err := m.prompt("Your name: ")
	if err != nil {
		return err
	}
	departure, err := m.promptDate("Departure date")
	if err != nil {
		return err
	}
	passengers, err := m.promptPassengers()
	if err != nil {
		return err
	}

	id, err := m.bookings.CreateFlightBooking(ctx, booking.CreateFlightBookingInput{
		CustomerName:  name,
		Destination:   destination,
		DepartureDate: departure,
		Passengers:    passengers,
	})
	if err != nil {
		m.report(err)
		return nil
	}
	m.printf("Flight booking was successful. Here is your booking ID: %d.\n", id)
	return nil
}

func (m *Menu) bookHoliday(ctx context.Context) error {
	m.println("***** Book a Holiday *****")
	destination, err := m.prompt("Destination: ")
	if err != nil {
		return err
	}
	names, err := m.bookings.AccommodationNames(ctx, destination)
	if err != nil {
		m.report(err)
		return nil
	}
	if len(names) == 0 {
		m.printf("Sorry, no accommodations found in %s.\n", destination)
		return nil
	}

	m.printf("***** Found %d accommodations in %s *****\n", len(names), destination)
	for i, n := range names {
		m.printf("%d) %s\n", i+1, n)
	}
	choice, err := m.promptInt("Choice of accommodation: ", 1, len(names))
	if err != nil {
		return err
	}
	accommodation := names[choice-1]

	if err := m.bookings.EnsureDestinationServed(ctx, destination); err != nil {
		m.report(err)
		return nil
	}
	name, err := m.prompt("Your name: ")
	if err != nil {
		return err
	}
	departure, err := m.promptDate("Departure date")
	if err != nil {
		return err
	}
	passengers, err := m.promptPassengers()
	if err != nil {
		return err
	}

	var checkIn time.Time
	for {
		if checkIn, err = m.promptDate("Check-in date"); err != nil {
			return err
		}
		if !checkIn.Before(departure) {
			break
		}
		m.println("Check-in cannot be earlier than departure date.")
	}
	nights, err := m.promptInt("Number of nights: ", 0, -1)
	if err != nil {
		return err
	}

	id, err := m.bookings.CreateHolidayBooking(ctx, booking.CreateHolidayBookingInput{
		CustomerName:      name,
		Destination:       destination,
		DepartureDate:     departure,
		Passengers:        passengers,
		AccommodationName: accommodation,
		CheckIn:           checkIn,
		CheckOut:          checkIn.AddDate(0, 0, nights),
	})
	if err != nil {
		m.report(err)
		return nil
	}
	m.printf("Holiday booking was successful. Here is your booking ID: %d.\n", id)
	return nil
}

func (m *Menu) viewInvoice() error {
	id, err := m.promptInt("Booking ID: ", 0, -1)
	if err != nil {
		return err
	}
	if err := m.bookings.PrintInvoice(m.out, id); err != nil {
		m.report(err)
	}
	return nil
}

func (m *Menu) viewItinerary() error {
	id, err := m.promptInt("Booking ID: ", 0, -1)
	if err != nil {
		return err
	}
	if err := m.bookings.PrintItinerary(m.out, id); err != nil {
		m.report(err)
	}
	return nil
}

func (m *Menu) updateHoliday(ctx context.Context) error {
	id, err := m.promptInt("Booking ID: ", 0, -1)
	if err != nil {
		return err
	}
	departure, err := m.bookings.DepartureDate(id)
	if err != nil {
		m.report(err)
		return nil
	}

	m.println("***** Update Holiday Booking *****")
	checkIn, err := m.promptDate("Check-in date")
	if err != nil {
		return err
	}
	if checkIn.Before(departure) {
		m.printf("Flight departure date is after %s. Amending departure date.\n", domain.FormatDate(checkIn))
	}
	nights, err := m.promptInt("Number of nights: ", 0, -1)
	if err != nil {
		return err
	}

	if err := m.bookings.UpdateHolidayStay(ctx, id, checkIn, checkIn.AddDate(0, 0, nights)); err != nil {
		m.report(err)
		return nil
	}
	m.println("Update was successful.")
	return nil
}

func (m *Menu) promptPassengers() ([]string, error) {
	first, err := m.prompt("First passenger's name: ")
	if err != nil {
		return nil, err
	}
	passengers := []string{first}
	for {
		more, err := m.prompt("Add another passenger? Type 'Y' to add another passenger: ")
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(more, "Y") {
			break
		}
		name, err := m.prompt("Passenger name: ")
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, name)
	}
	m.printf("You have added %d passengers.\n", len(passengers))
	return passengers, nil
}

// promptDate reads a YYYY-MM-DD date that is not in the past.
func (m *Menu) promptDate(label string) (time.Time, error) {
	today := domain.DateOf(m.now())
	for {
		line, err := m.prompt(label + " (YYYY-MM-DD): ")
		if err != nil {
			return time.Time{}, err
		}
		date, err := domain.ParseDate(line)
		switch {
		case err != nil:
			m.println("Please enter a date as YYYY-MM-DD.")
		case date.Before(today):
			m.printf("Date cannot be before %s.\n", domain.FormatDate(today))
		default:
			return date, nil
		}
	}
}

// promptInt reads an integer no smaller than lo and, when hi >= lo, no
// larger than hi.
func (m *Menu) promptInt(label string, lo, hi int) (int, error) {
	for {
		line, err := m.prompt(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= lo && (hi < lo || n <= hi) {
			return n, nil
		}
		m.println("Invalid number. Re-enter.")
	}
}

func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) report(err error) {
	switch {
	case errors.Is(err, domain.ErrDestinationNotFound):
		m.println("Sorry, there is no flight to that destination.")
	case errors.Is(err, domain.ErrBookingNotFound):
		m.println("Booking ID does not exist.")
	case errors.Is(err, domain.ErrNotHolidayBooking):
		m.println("Booking ID provided is not a Holiday Booking.")
	case errors.Is(err, domain.ErrAccommodationNotFound),
		errors.Is(err, domain.ErrInvalidStay),
		errors.Is(err, domain.ErrInvalidField),
		errors.Is(err, domain.ErrNoPassengers):
		m.println(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.println("Operation cancelled.")
	default:
		m.logger.Error("booking operation failed", zap.Error(err))
		m.println("An error has occurred.")
	}
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}
