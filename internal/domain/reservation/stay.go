package reservation

import (
	"time"

	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
)

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

// Stay is the half-open date range [CheckIn, CheckOut) a reservation claims.
// Both ends are calendar dates held as UTC midnight.
type Stay struct {
	checkIn  time.Time
	checkOut time.Time
}

// NewStay validates and normalizes a date range.
func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	in, out := toDate(checkIn), toDate(checkOut)
	if in.IsZero() || out.IsZero() {
		return Stay{}, apperror.Validation("check_in and check_out are required")
	}
	if !in.Before(out) {
		return Stay{}, apperror.Validation("check_in %s must be before check_out %s",
			in.Format(DateLayout), out.Format(DateLayout))
	}
	return Stay{checkIn: in, checkOut: out}, nil
}

// ParseStay parses two dates in DateLayout.
func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return Stay{}, apperror.Validation("invalid check_in date %q, expected YYYY-MM-DD", checkIn)
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return Stay{}, apperror.Validation("invalid check_out date %q, expected YYYY-MM-DD", checkOut)
	}
	return NewStay(in, out)
}

func (s Stay) CheckIn() time.Time  { return s.checkIn }
func (s Stay) CheckOut() time.Time { return s.checkOut }

// Nights returns the number of nights in the stay.
func (s Stay) Nights() int {
	return int(s.checkOut.Sub(s.checkIn).Hours() / 24)
}

// Overlaps applies the half-open interval test: [a,b) and [c,d) overlap iff
// a < d and c < b. Back-to-back stays do not overlap.
func (s Stay) Overlaps(other Stay) bool {
	return s.checkIn.Before(other.checkOut) && other.checkIn.Before(s.checkOut)
}

func toDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
