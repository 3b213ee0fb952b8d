package repository

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"go.uber.org/zap"
)

// BookingStore persists the whole booking collection.
type BookingStore interface {
	Load(ctx context.Context) ([]domain.Booking, error)
	Save(ctx context.Context, bookings []domain.Booking) error
}

// Booking file delimiters. Fields end with fieldSep, passengers inside the
// passenger field end with passengerSep.
const (
	fieldSep     = "<"
	passengerSep = ">"

	flightFieldCount  = 10
	holidayFieldCount = 16
)

// FileBookingStore keeps flight-only bookings and holiday bookings in two
// flat files, one record per line. Every save rewrites both files.
type FileBookingStore struct {
	flightsPath  string
	holidaysPath string
	logger       *zap.Logger
}

type FileBookingStoreOption func(*FileBookingStore)

func WithLogger(logger *zap.Logger) FileBookingStoreOption {
	return func(s *FileBookingStore) {
		s.logger = logger
	}
}

func NewFileBookingStore(flightsPath, holidaysPath string, opts ...FileBookingStoreOption) *FileBookingStore {
	s := &FileBookingStore{
		flightsPath:  flightsPath,
		holidaysPath: holidaysPath,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads both files and returns every booking sorted by identifier. A
// missing file holds no bookings; any other read failure aborts the load.
func (s *FileBookingStore) Load(ctx context.Context) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)

	err := s.readFile(ctx, s.flightsPath, func(line string) error {
		b, err := DecodeFlightBooking(line)
		if err != nil {
			return err
		}
		bookings = append(bookings, b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.readFile(ctx, s.holidaysPath, func(line string) error {
		b, err := DecodeHolidayBooking(line)
		if err != nil {
			return err
		}
		bookings = append(bookings, b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Base().ID < bookings[j].Base().ID
	})
	return bookings, nil
}

// Save routes each booking to the file of its kind, keeping the given order.
// Every record is encoded before either file is touched, so a bad field
// leaves the files as they were. A save always runs to completion; ctx is
// not consulted.
func (s *FileBookingStore) Save(_ context.Context, bookings []domain.Booking) error {
	var flights, holidays bytes.Buffer
	for _, b := range bookings {
		switch v := b.(type) {
		case *domain.FlightBooking:
			line, err := EncodeFlightBooking(v)
			if err != nil {
				return err
			}
			flights.WriteString(line)
			flights.WriteByte('\n')
		case *domain.HolidayBooking:
			line, err := EncodeHolidayBooking(v)
			if err != nil {
				return err
			}
			holidays.WriteString(line)
			holidays.WriteByte('\n')
		default:
			return fmt.Errorf("unsupported booking type %T", b)
		}
	}

	if err := os.WriteFile(s.flightsPath, flights.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.flightsPath, err)
	}
	if err := os.WriteFile(s.holidaysPath, holidays.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.holidaysPath, err)
	}
	return nil
}

func (s *FileBookingStore) readFile(ctx context.Context, path string, fn func(line string) error) error {
	err := readRecords(ctx, path, fn)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("booking file not found, starting it empty", zap.String("path", path))
		return nil
	}
	return err
}

func readRecords(ctx context.Context, path string, fn func(line string) error) error {
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
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// EncodeFlightBooking renders b as
// id<customer<bookingDate<invoice<flightNo<destination<departure<p1>p2><single<total<
func EncodeFlightBooking(b *domain.FlightBooking) (string, error) {
	var sb strings.Builder
	if err := writeFlightFields(&sb, &b.BookingBase, &b.Flight); err != nil {
		return "", fmt.Errorf("booking %d: %w", b.ID, err)
	}
	return sb.String(), nil
}

// EncodeHolidayBooking renders the flight fields followed by
// accommodation<address<checkIn<checkOut<singleNight<holidayTotal<
func EncodeHolidayBooking(b *domain.HolidayBooking) (string, error) {
	var sb strings.Builder
	if err := writeFlightFields(&sb, &b.BookingBase, &b.Flight); err != nil {
		return "", fmt.Errorf("booking %d: %w", b.ID, err)
	}
	for _, v := range []string{b.AccommodationName, b.AccommodationAddress} {
		if err := checkField(v); err != nil {
			return "", fmt.Errorf("booking %d: %w", b.ID, err)
		}
	}
	writeField(&sb, b.AccommodationName)
	writeField(&sb, b.AccommodationAddress)
	writeField(&sb, domain.FormatDate(b.CheckIn))
	writeField(&sb, domain.FormatDate(b.CheckOut))
	writeField(&sb, formatCost(b.SingleNightCost))
	writeField(&sb, formatCost(b.TotalCost))
	return sb.String(), nil
}

func writeFlightFields(sb *strings.Builder, base *domain.BookingBase, f *domain.Flight) error {
	text := append([]string{base.CustomerName, f.FlightNumber, f.Destination}, f.Passengers...)
	for _, v := range text {
		if err := checkField(v); err != nil {
			return err
		}
	}

	writeField(sb, strconv.Itoa(base.ID))
	writeField(sb, base.CustomerName)
	writeField(sb, domain.FormatDate(base.BookingDate))
	writeField(sb, strconv.Itoa(base.InvoiceNo))
	writeField(sb, f.FlightNumber)
	writeField(sb, f.Destination)
	writeField(sb, domain.FormatDate(f.DepartureDate))
	for _, p := range f.Passengers {
		sb.WriteString(p)
		sb.WriteString(passengerSep)
	}
	sb.WriteString(fieldSep)
	writeField(sb, formatCost(f.SingleFlightCost))
	writeField(sb, formatCost(f.TotalCost))
	return nil
}

func writeField(sb *strings.Builder, v string) {
	sb.WriteString(v)
	sb.WriteString(fieldSep)
}

func checkField(v string) error {
	if strings.ContainsAny(v, fieldSep+passengerSep+"\r\n") {
		return fmt.Errorf("%w: %q contains a delimiter", domain.ErrInvalidField, v)
	}
	return nil
}

// formatCost writes the shortest exact decimal form, always with a fraction
// part, e.g. 250.0 or 333.33.
func formatCost(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func DecodeFlightBooking(line string) (*domain.FlightBooking, error) {
	values, err := splitRecord(line, flightFieldCount)
	if err != nil {
		return nil, err
	}
	base, flight, err := decodeFlightFields(values)
	if err != nil {
		return nil, err
	}
	return domain.NewFlightBooking(base, flight), nil
}

func DecodeHolidayBooking(line string) (*domain.HolidayBooking, error) {
	values, err := splitRecord(line, holidayFieldCount)
	if err != nil {
		return nil, err
	}
	base, flight, err := decodeFlightFields(values)
	if err != nil {
		return nil, err
	}

	d := decoder{values: values}
	h := &domain.HolidayBooking{
		BookingBase:          base,
		Flight:               flight,
		AccommodationName:    values[10],
		AccommodationAddress: values[11],
		CheckIn:              d.date(12, "check-in"),
		CheckOut:             d.date(13, "check-out"),
		SingleNightCost:      d.cost(14, "single night cost"),
		TotalCost:            d.cost(15, "holiday total cost"),
	}
	if d.err != nil {
		return nil, d.err
	}
	return h, nil
}

func splitRecord(line string, want int) ([]string, error) {
	values := strings.Split(line, fieldSep)
	if len(values) < want {
		return nil, fmt.Errorf("expected %d fields, got %d", want, len(values))
	}
	for _, extra := range values[want:] {
		if extra != "" {
			return nil, fmt.Errorf("expected %d fields, got %d", want, len(values))
		}
	}
	return values[:want], nil
}

func decodeFlightFields(values []string) (domain.BookingBase, domain.Flight, error) {
	d := decoder{values: values}
	base := domain.BookingBase{
		ID:           d.integer(0, "booking id"),
		CustomerName: values[1],
		BookingDate:  d.date(2, "booking date"),
		InvoiceNo:    d.integer(3, "invoice number"),
	}
	flight := domain.Flight{
		FlightNumber:     values[4],
		Destination:      values[5],
		DepartureDate:    d.date(6, "departure date"),
		Passengers:       splitPassengers(values[7]),
		SingleFlightCost: d.cost(8, "single flight cost"),
		TotalCost:        d.cost(9, "total cost"),
	}
	return base, flight, d.err
}

func splitPassengers(field string) []string {
	passengers := make([]string, 0)
	for _, p := range strings.Split(field, passengerSep) {
		if p != "" {
			passengers = append(passengers, p)
		}
	}
	return passengers
}

// decoder keeps the first conversion error so field parsing reads linearly.
type decoder struct {
	values []string
	err    error
}

func (d *decoder) integer(i int, name string) int {
	v, err := strconv.Atoi(d.values[i])
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("bad %s %q: %w", name, d.values[i], err)
	}
	return v
}

func (d *decoder) cost(i int, name string) float64 {
	v, err := strconv.ParseFloat(d.values[i], 64)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("bad %s %q: %w", name, d.values[i], err)
	}
	return v
}

func (d *decoder) date(i int, name string) time.Time {
	v, err := domain.ParseDate(d.values[i])
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("bad %s %q: %w", name, d.values[i], err)
	}
	return v
}

var _ BookingStore = (*FileBookingStore)(nil)
