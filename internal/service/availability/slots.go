package availability

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

// Slot is a concrete, dated candidate meeting window. It is never stored.
type Slot struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

// Interval is a half-open [Start, End) busy period reported by a calendar.
type Interval struct {
	Start time.Time
	End   time.Time
}

// mondayWeekday maps time.Weekday (Sunday=0) onto 0=Monday..6=Sunday.
func mondayWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

var locCache sync.Map // zone name -> *time.Location

var errNotIANAZone = errors.New("zone must be an IANA name")

// loadLocation accepts IANA names only. "" and "Local" resolve to UTC and to
// the server zone respectively, so both are refused.
func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, errNotIANAZone
	}
	if v, ok := locCache.Load(name); ok {
		return v.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	locCache.Store(name, loc)
	return loc, nil
}

// GenerateSlots expands rules into candidate slots for every calendar date in
// [startDate, startDate+days], both ends inclusive. Times are interpreted in
// each rule's own zone. Only slots starting strictly after now are kept, and
// a trailing partial slot is dropped. Overlapping rules produce overlapping
// slots. Inactive rules and rules with an unknown zone are skipped. The
// result is ordered by start time.
func GenerateSlots(rules []*repo.AvailabilityRule, startDate time.Time, days int, now time.Time) []Slot {
	y, m, d := startDate.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	byWeekday := make(map[int][]*repo.AvailabilityRule, 7)
	for _, r := range rules {
		if r == nil || !r.IsActive || r.SlotDurationMinutes <= 0 {
			continue
		}
		byWeekday[r.Weekday] = append(byWeekday[r.Weekday], r)
	}

	var out []Slot
	for i := 0; i <= days; i++ {
		date := first.AddDate(0, 0, i)
		for _, r := range byWeekday[mondayWeekday(date.Weekday())] {
			loc, err := loadLocation(r.Timezone)
			if err != nil {
				continue
			}
			out = appendRuleSlots(out, r, date, loc, now)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func appendRuleSlots(out []Slot, r *repo.AvailabilityRule, date time.Time, loc *time.Location, now time.Time) []Slot {
	y, m, d := date.Date()
	windowStart := r.StartTime.On(y, m, d, loc)
	windowEnd := r.EndTime.On(y, m, d, loc)
	dur := time.Duration(r.SlotDurationMinutes) * time.Minute

	for start := windowStart; !start.Add(dur).After(windowEnd); start = start.Add(dur) {
		if !start.After(now) {
			continue
		}
		out = append(out, Slot{
			StartTime:   start,
			EndTime:     start.Add(dur),
			IsAvailable: true,
		})
	}
	return out
}

// Resolve returns slots with IsAvailable recomputed. A slot whose start
// equals a booked start is unavailable. Otherwise a slot overlapping any busy
// interval (s.start < b.end && s.end > b.start) is unavailable.
func Resolve(slots []Slot, bookedStarts []time.Time, busy []Interval) []Slot {
	booked := make(map[int64]struct{}, len(bookedStarts))
	for _, t := range bookedStarts {
		booked[t.UnixNano()] = struct{}{}
	}

	out := make([]Slot, len(slots))
	for i, s := range slots {
		s.IsAvailable = true
		if _, ok := booked[s.StartTime.UnixNano()]; ok {
			s.IsAvailable = false
		} else {
			for _, b := range busy {
				if s.StartTime.Before(b.End) && s.EndTime.After(b.Start) {
					s.IsAvailable = false
					break
				}
			}
		}
		out[i] = s
	}
	return out
}
