package chrono

import (
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	Now() time.Time
}

// StandardTime reads the system clock in the county's local timezone,
// output file timestamps should not depend on where the scraper is run.
type StandardTime struct {
	location *time.Location
}

func NewStandardTime() (StandardTime, error) {
	location, err := time.LoadLocation("America/Chicago")
	if err != nil {
		return StandardTime{}, err
	}
	return StandardTime{location: location}, nil
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(s.location)
}

// FixedTime always returns the same instant.
type FixedTime time.Time

func (f FixedTime) Now() time.Time {
	return time.Time(f)
}
