package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/kafka"
	"go.uber.org/zap"
)

// Sender delivers booking notifications. Delivery is a structured log entry;
// there is no mail transport behind it yet.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.logger.Info("booking notification",
		zap.String("to", event.CustomerName),
		zap.String("subject", Subject(event)),
		zap.Int("invoice_no", event.InvoiceNo),
		zap.Float64("total_cost", event.TotalCost),
	)
	return nil
}

// Subject is the notification title for event.
func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventHolidayStayUpdated:
		return fmt.Sprintf("Booking %d: stay updated to %s - %s", event.BookingID, event.CheckIn, event.CheckOut)
	default:
		return fmt.Sprintf("Booking %d confirmed: %s to %s on %s, invoice %d",
			event.BookingID, event.FlightNumber, event.Destination, event.DepartureDate, event.InvoiceNo)
	}
}
