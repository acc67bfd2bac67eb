package clock

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	DefaultTimeZone = "Asia/Karachi"
)

// Stamp is a civil date and wall-clock time pair.
type Stamp struct {
	Date string
	Time string
}

// Clock is the only source of "now" for attendance and payroll decisions.
type Clock interface {
	Now() time.Time
	Stamp() Stamp
	Today() string
	MonthYear() (time.Month, int)
	MonthsAgo(months int) string
}

// Civil resolves instants into a fixed civil time zone.
type Civil struct {
	loc *time.Location
	now func() time.Time
}

// NewCivil loads the named zone. An empty name falls back to DefaultTimeZone.
func NewCivil(zone string) (*Civil, error) {
	if zone == "" {
		zone = DefaultTimeZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", zone, err)
	}
	return &Civil{loc: loc, now: time.Now}, nil
}

// NewFixed returns a Civil clock frozen at t, for tests and replays.
func NewFixed(loc *time.Location, t time.Time) *Civil {
	return &Civil{loc: loc, now: func() time.Time { return t }}
}

func (c *Civil) Location() *time.Location {
	return c.loc
}

func (c *Civil) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *Civil) Stamp() Stamp {
	now := c.Now()
	return Stamp{
		Date: now.Format(DateLayout),
		Time: now.Format(TimeLayout),
	}
}

func (c *Civil) Today() string {
	return c.Now().Format(DateLayout)
}

func (c *Civil) MonthYear() (time.Month, int) {
	now := c.Now()
	return now.Month(), now.Year()
}

// MonthsAgo returns the civil date n calendar months before today.
func (c *Civil) MonthsAgo(months int) string {
	return c.Now().AddDate(0, -months, 0).Format(DateLayout)
}

// ParseMonth accepts a full English month name in any letter case.
func ParseMonth(name string) (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(strings.TrimSpace(name), m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", name)
}

// MonthRange returns the first and last civil dates of a month as strings.
func MonthRange(year int, month time.Month) (from, to string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}
