package calendar

import (
	"fmt"
	"time"

	"goldbees-trader/internal/store"
)

var IST = time.FixedZone("IST", 19800)

// Calendar answers NSE trading-day and session-hours questions in IST.
type Calendar struct {
	openMin, closeMin int
	holidays          map[string]struct{}
}

func New(m store.Market) (*Calendar, error) {
	oh, om, err := store.ParseHHMM(m.Open)
	if err != nil {
		return nil, fmt.Errorf("market.open: %w", err)
	}
	ch, cm, err := store.ParseHHMM(m.Close)
	if err != nil {
		return nil, fmt.Errorf("market.close: %w", err)
	}
	c := &Calendar{
		openMin:  oh*60 + om,
		closeMin: ch*60 + cm,
		holidays: make(map[string]struct{}, len(m.Holidays)),
	}
	if c.openMin >= c.closeMin {
		return nil, fmt.Errorf("market.open %s must be before market.close %s", m.Open, m.Close)
	}
	for _, h := range m.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return nil, fmt.Errorf("market.holidays: invalid date '%s'", h)
		}
		c.holidays[h] = struct{}{}
	}
	return c, nil
}

func (c *Calendar) IsHoliday(t time.Time) bool {
	_, ok := c.holidays[t.In(IST).Format("2006-01-02")]
	return ok
}

// IsTradingDay is false on weekends and configured holidays.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	switch t.In(IST).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(t)
}

// IsOpen reports whether t falls within [open, close) on a trading day.
func (c *Calendar) IsOpen(t time.Time) bool {
	if !c.IsTradingDay(t) {
		return false
	}
	m := minuteOfDay(t)
	return m >= c.openMin && m < c.closeMin
}

func (c *Calendar) OpenAt(t time.Time) time.Time  { return At(t, c.openMin/60, c.openMin%60) }
func (c *Calendar) CloseAt(t time.Time) time.Time { return At(t, c.closeMin/60, c.closeMin%60) }

// At returns hour:minute IST on the IST day containing t.
func At(t time.Time, hour, minute int) time.Time {
	t = t.In(IST)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, IST)
}

func minuteOfDay(t time.Time) int {
	t = t.In(IST)
	return t.Hour()*60 + t.Minute()
}
