// Package printer renders bookings for the console: summaries, itineraries
// and invoices.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

const (
	CompanyName      = "TravelAdventure Pty. Ltd."
	NoBookingsNotice = "There are no bookings recorded."

	separator = "*************************************"
)

// WriteAll renders every booking in order, or NoBookingsNotice when there
// are none.
func WriteAll(w io.Writer, bookings []domain.Booking) {
	if len(bookings) == 0 {
		fmt.Fprintln(w, NoBookingsNotice)
		return
	}
	for i, b := range bookings {
		fmt.Fprintf(w, "[BOOKING %d]\n", i+1)
		WriteDetails(w, b)
	}
}

func WriteDetails(w io.Writer, b domain.Booking) {
	base := b.Base()
	fmt.Fprintln(w, "\n***** Booking Details *****")
	fmt.Fprintf(w, "Booking ID: %d\n", base.ID)
	fmt.Fprintf(w, "Customer Name: %s\n", base.CustomerName)
	fmt.Fprintf(w, "Date: %s\n", domain.FormatDate(base.BookingDate))
	fmt.Fprintln(w, separator)

	switch v := b.(type) {
	case *domain.FlightBooking:
		writeFlight(w, &v.Flight)
	case *domain.HolidayBooking:
		writeFlight(w, &v.Flight)
		writeStay(w, v)
	}
}

// WriteItinerary renders the travel plan: the flight leg and, for a holiday,
// the stay.
func WriteItinerary(w io.Writer, b domain.Booking) {
	base := b.Base()
	fmt.Fprintf(w, "\n***** Itinerary for Booking %d *****\n", base.ID)
	fmt.Fprintf(w, "Traveller: %s\n", base.CustomerName)
	fmt.Fprintln(w, separator)

	switch v := b.(type) {
	case *domain.FlightBooking:
		writeFlight(w, &v.Flight)
	case *domain.HolidayBooking:
		writeFlight(w, &v.Flight)
		writeStay(w, v)
	}
}

func WriteInvoice(w io.Writer, b domain.Booking) {
	base := b.Base()
	fmt.Fprintln(w, "\nInvoice")
	fmt.Fprintln(w, "-------")
	fmt.Fprintf(w, "Invoice Number: %d\n", base.InvoiceNo)
	fmt.Fprintf(w, "From: %s\n", CompanyName)
	fmt.Fprintf(w, "Booking ID: %d\n", base.ID)
	fmt.Fprintf(w, "Date: %s\n", domain.FormatDate(base.BookingDate))
	fmt.Fprintf(w, "To Customer: %s\n\n", base.CustomerName)
	fmt.Fprintf(w, "%-50s%-10s%-10s%-20s\n", "Description", "Quantity", "Price", "Line Total")

	leg := b.Leg()
	for _, p := range leg.Passengers {
		writeLine(w, "Flight for "+p, 1, leg.SingleFlightCost)
	}
	if h, ok := b.(*domain.HolidayBooking); ok {
		writeLine(w, fmt.Sprintf("Stay at %s, %s", h.AccommodationName, h.AccommodationAddress),
			h.Nights(), h.SingleNightCost)
	}

	fmt.Fprintf(w, "%70s%.2f\n", "TOTAL COST: $", b.Total())
	fmt.Fprintln(w, "-------")
}

func writeFlight(w io.Writer, f *domain.Flight) {
	fmt.Fprintf(w, "Flight Number: %s\n", f.FlightNumber)
	fmt.Fprintf(w, "Destination: %s\n", f.Destination)
	fmt.Fprintf(w, "Departure Date: %s\n", domain.FormatDate(f.DepartureDate))
	fmt.Fprintf(w, "Passengers: %s\n", passengerList(f.Passengers))
	fmt.Fprintln(w, separator)
}

func writeStay(w io.Writer, h *domain.HolidayBooking) {
	fmt.Fprintf(w, "Accommodation: %s\n", h.AccommodationName)
	fmt.Fprintf(w, "Address: %s\n", h.AccommodationAddress)
	fmt.Fprintf(w, "Check-In: %s\n", domain.FormatDate(h.CheckIn))
	fmt.Fprintf(w, "Check-Out: %s\n", domain.FormatDate(h.CheckOut))
	fmt.Fprintf(w, "Nights: %d\n", h.Nights())
	fmt.Fprintln(w, separator)
}

func writeLine(w io.Writer, description string, quantity int, price float64) {
	fmt.Fprintf(w, "%-50s%-10d%-10.2f%-20.2f\n", description, quantity, price, price*float64(quantity))
}

// passengerList numbers the passengers: "1)Alice 2)Bob".
func passengerList(passengers []string) string {
	parts := make([]string, len(passengers))
	for i, p := range passengers {
		parts[i] = fmt.Sprintf("%d)%s", i+1, p)
	}
	return strings.Join(parts, " ")
}
