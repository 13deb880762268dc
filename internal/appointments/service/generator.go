package service

import (
	"fmt"
	"time"
	"travelbook/pkg/model"
)

// Grid describes a business day: slots start at Start and repeat every Step
// until End, which is exclusive.
type Grid struct {
	Start time.Duration
	End   time.Duration
	Step  time.Duration
}

func NewGrid(start, end string, stepMinutes int) (Grid, error) {
	s, err := clockOffset(start)
	if err != nil {
		return Grid{}, fmt.Errorf("invalid day start: %w", err)
	}
	e, err := clockOffset(end)
	if err != nil {
		return Grid{}, fmt.Errorf("invalid day end: %w", err)
	}
	if e <= s {
		return Grid{}, fmt.Errorf("day end %s must be after day start %s", end, start)
	}
	if stepMinutes <= 0 {
		return Grid{}, fmt.Errorf("slot step must be positive, got %d", stepMinutes)
	}
	return Grid{Start: s, End: e, Step: time.Duration(stepMinutes) * time.Minute}, nil
}

// DefaultGrid is 09:00 to 18:00 in 20 minute steps.
func DefaultGrid() Grid {
	return Grid{Start: 9 * time.Hour, End: 18 * time.Hour, Step: 20 * time.Minute}
}

func clockOffset(hhmm string) (time.Duration, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// Times lists the slot start times of a day in order.
func (g Grid) Times() []string {
	times := make([]string, 0, g.Size())
	for t := g.Start; t < g.End; t += g.Step {
		times = append(times, formatClock(t))
	}
	return times
}

func (g Grid) Size() int {
	return int((g.End - g.Start + g.Step - 1) / g.Step)
}

func (g Grid) Contains(hhmm string) bool {
	t, err := clockOffset(hhmm)
	if err != nil {
		return false
	}
	return t >= g.Start && t < g.End && (t-g.Start)%g.Step == 0
}

// Build returns the open slots of date.
func (g Grid) Build(date string, now time.Time) []*model.TimeSlot {
	times := g.Times()
	slots := make([]*model.TimeSlot, len(times))
	for i, t := range times {
		slots[i] = &model.TimeSlot{
			Date:      date,
			Time:      t,
			Status:    model.SlotOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return slots
}
