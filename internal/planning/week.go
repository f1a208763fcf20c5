// Package planning holds the weekly-plan engine: week arithmetic, the editable
// plan working copy, invariant validation, the approval state machine and the
// visit analytics. Everything here is pure and takes the current time as an
// argument; nothing reads the wall clock or performs I/O.
package planning

import (
	"errors"
	"fmt"
	"time"
)

// WeekConfig describes the work week: the weekday it starts on and the weekdays
// right before the boundary during which the next week is planned.
type WeekConfig struct {
	Start        time.Weekday
	PlanningDays []time.Weekday
}

// DefaultWeekConfig is a Saturday-start week planned on Thursday and Friday.
func DefaultWeekConfig() WeekConfig {
	return WeekConfig{
		Start:        time.Saturday,
		PlanningDays: []time.Weekday{time.Thursday, time.Friday},
	}
}

// Validate checks that every configured weekday is a real weekday.
func (c WeekConfig) Validate() error {
	if c.Start < time.Sunday || c.Start > time.Saturday {
		return fmt.Errorf("invalid week start %d", c.Start)
	}
	if len(c.PlanningDays) == 0 {
		return errors.New("at least one planning day is required")
	}
	for _, d := range c.PlanningDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid planning day %d", d)
		}
	}
	return nil
}

// IsPlanningWindow reports whether now falls on one of the planning days.
func (c WeekConfig) IsPlanningWindow(now time.Time) bool {
	wd := now.Weekday()
	for _, d := range c.PlanningDays {
		if d == wd {
			return true
		}
	}
	return false
}

// CurrentWeekStart is midnight of the most recent week-start day on or before now.
func (c WeekConfig) CurrentWeekStart(now time.Time) time.Time {
	back := (int(now.Weekday()) - int(c.Start) + 7) % 7
	return dateOf(now).AddDate(0, 0, -back)
}

// NextWeekStart is midnight of the first week-start day strictly after now.
func (c WeekConfig) NextWeekStart(now time.Time) time.Time {
	ahead := (int(c.Start) - int(now.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return dateOf(now).AddDate(0, 0, ahead)
}

// ResolvePlanWeekStart returns the start of the week being planned or viewed:
// the upcoming week during the planning window, the current week otherwise.
func (c WeekConfig) ResolvePlanWeekStart(now time.Time) time.Time {
	if c.IsPlanningWindow(now) {
		return c.NextWeekStart(now)
	}
	return c.CurrentWeekStart(now)
}

// Days lists the seven weekdays in work-week order, beginning with Start.
func (c WeekConfig) Days() []time.Weekday {
	days := make([]time.Weekday, 7)
	for i := range days {
		days[i] = time.Weekday((int(c.Start) + i) % 7)
	}
	return days
}

// DateOf returns the calendar date of weekday d in the week beginning at weekStart.
func (c WeekConfig) DateOf(weekStart time.Time, d time.Weekday) time.Time {
	offset := (int(d) - int(c.Start) + 7) % 7
	return dateOf(weekStart).AddDate(0, 0, offset)
}

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b, using b's location.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
