package domain

import "strings"

// FlightRecord is a line of the flight reference catalog.
type FlightRecord struct {
	FlightNumber string  `json:"flight_number"`
	Destination  string  `json:"destination"`
	CostPerSeat  float64 `json:"cost_per_seat"`
}

// Accommodation is a line of the accommodation reference catalog.
type Accommodation struct {
	Location     string  `json:"location"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	CostPerNight float64 `json:"cost_per_night"`
}

// Accommodations is the set of accommodations found for one destination, in
// catalog order.
type Accommodations []Accommodation

// Find returns the last accommodation whose name matches, ignoring case.
func (a Accommodations) Find(name string) (Accommodation, bool) {
	var (
		found Accommodation
		ok    bool
	)
	for _, acc := range a {
		if strings.EqualFold(acc.Name, name) {
			found, ok = acc, true
		}
	}
	return found, ok
}

// Cost returns the nightly cost of the named accommodation, or 0 when the name
// is not in the list.
func (a Accommodations) Cost(name string) float64 {
	acc, _ := a.Find(name)
	return acc.CostPerNight
}

// Address returns the address of the named accommodation, or "" when the name
// is not in the list.
func (a Accommodations) Address(name string) string {
	acc, _ := a.Find(name)
	return acc.Address
}

func (a Accommodations) Names() []string {
	names := make([]string, 0, len(a))
	for _, acc := range a {
		names = append(names, acc.Name)
	}
	return names
}
