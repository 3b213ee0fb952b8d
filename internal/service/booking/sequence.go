package booking

import "github.com/Domenick1991/travelbooking/internal/domain"

// Sequence hands out booking identifiers and invoice numbers in lockstep.
type Sequence struct {
	nextID      int
	nextInvoice int
}

func NewSequence() *Sequence {
	return &Sequence{nextID: domain.FirstBookingID, nextInvoice: domain.FirstInvoiceNo}
}

// Next returns the next identifier/invoice pair and advances both.
func (s *Sequence) Next() (id, invoiceNo int) {
	id, invoiceNo = s.nextID, s.nextInvoice
	s.nextID++
	s.nextInvoice++
	return id, invoiceNo
}

// Peek returns the pair Next would hand out, without advancing.
func (s *Sequence) Peek() (id, invoiceNo int) {
	return s.nextID, s.nextInvoice
}

// Reseed continues the sequence strictly above the given maxima.
func (s *Sequence) Reseed(maxID, maxInvoiceNo int) {
	s.nextID = maxID + 1
	s.nextInvoice = maxInvoiceNo + 1
}
