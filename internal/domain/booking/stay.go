package booking

import (
	"math"
	"time"

	"github.com/stayhub/service-booking/pkg/domain"
)

// Stay is a half-open date interval [CheckIn, CheckOut): the guest occupies
// the room on every night from check-in up to, but not including, checkout
// day. A checkout on day X never conflicts with a check-in on day X.
type Stay struct {
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
}

// NewStay builds a Stay from two calendar dates, normalizing away any time
// component. Check-in must precede checkout.
func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	s := Stay{
		CheckIn:  truncateToDay(checkIn),
		CheckOut: truncateToDay(checkOut),
	}
	if !s.CheckIn.Before(s.CheckOut) {
		return Stay{}, domain.NewInvalidDateRangeError("check-out date must be after check-in date")
	}
	return s, nil
}

// Nights returns the number of nights covered by the stay.
func (s Stay) Nights() int {
	return int(math.Ceil(s.CheckOut.Sub(s.CheckIn).Hours() / 24))
}

// Overlaps reports whether two stays share at least one night.
func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && s.CheckOut.After(other.CheckIn)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
