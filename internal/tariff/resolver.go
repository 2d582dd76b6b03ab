// Package tariff derives the effective rate for a contract at a point in
// time. All functions are pure over the terms and timestamps they receive.
package tariff

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/billing"
)

const daysPerYear = 365.25

// EscalationRecord is one applied step of a custom escalation schedule.
// The contract keeps these append-only; a year is never recorded twice.
type EscalationRecord struct {
	Year          int       `json:"year"`
	Rate          float64   `json:"rate"`
	ResultingRate float64   `json:"resultingRate"`
	AppliedAt     time.Time `json:"appliedAt"`
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func elapsedYears(start, asOf time.Time) float64 {
	return asOf.Sub(start).Hours() / 24 / daysPerYear
}

// CurrentRate computes the contract's effective rate at asOf. An inactive
// contract has no current price and yields 0.
//
// fixed_percentage escalates annually and stepwise: one whole multiplier per
// full contract year elapsed, not continuous compounding. custom_schedule
// multiplies the base by every schedule entry up to the current contract
// year. cpi_linked and wpi_linked cannot be computed without external index
// data and return the unescalated base rate.
func CurrentRate(terms billing.Terms, start, asOf time.Time, active bool) float64 {
	if !active {
		return 0
	}

	switch terms.EscalationType {
	case billing.EscalationCustomSchedule:
		rate, _ := scheduleRate(terms, start, asOf)
		return rate
	case billing.EscalationCPILinked, billing.EscalationWPILinked:
		return terms.BaseRate
	default:
		periods := int(math.Floor(elapsedYears(start, asOf)))
		rate := terms.BaseRate
		for i := 0; i < periods; i++ {
			rate *= 1 + terms.EscalationRate
		}
		return round4(rate)
	}
}

func scheduleRate(terms billing.Terms, start, asOf time.Time) (float64, int) {
	currentYear := int(math.Floor(elapsedYears(start, asOf))) + 1
	rate := terms.BaseRate
	for _, e := range terms.EscalationSchedule {
		if e.Year > currentYear {
			break
		}
		rate *= 1 + e.Rate
	}
	return round4(rate), currentYear
}

// ApplySchedule resolves the custom-schedule rate at asOf and records any
// newly reached schedule years into history. Applying the same year twice is
// a no-op for both the rate and the history.
func ApplySchedule(terms billing.Terms, start, asOf time.Time, history []EscalationRecord) (float64, []EscalationRecord) {
	currentYear := int(math.Floor(elapsedYears(start, asOf))) + 1

	recorded := make(map[int]bool, len(history))
	for _, r := range history {
		recorded[r.Year] = true
	}

	rate := terms.BaseRate
	for _, e := range terms.EscalationSchedule {
		if e.Year > currentYear {
			break
		}
		rate *= 1 + e.Rate
		if !recorded[e.Year] {
			history = append(history, EscalationRecord{
				Year:          e.Year,
				Rate:          e.Rate,
				ResultingRate: round4(rate),
				AppliedAt:     asOf,
			})
			recorded[e.Year] = true
		}
	}
	return round4(rate), history
}

// ResolveSlabRate scans slabs in the order given and returns the rate of the
// first slab containing consumption (min inclusive, max exclusive). When no
// slab matches, the last slab's rate applies; an empty list yields 0. Slabs
// must be pre-sorted by range by the caller.
func ResolveSlabRate(consumption float64, slabs []billing.Slab) float64 {
	if len(slabs) == 0 {
		return 0
	}
	for _, s := range slabs {
		if consumption >= s.Min && (s.Max == nil || consumption < *s.Max) {
			return s.Rate
		}
	}
	return slabs[len(slabs)-1].Rate
}

// ResolveTimeOfUseRate returns the rate of the first time-of-use window
// containing t's time of day. Windows are "HH:MM-HH:MM" and may wrap
// midnight (e.g. "22:00-06:00"). No match, or no windows, yields 0.
func ResolveTimeOfUseRate(t time.Time, rates []billing.TimeOfUseRate) float64 {
	minute := t.Hour()*60 + t.Minute()
	for _, r := range rates {
		from, to, ok := parseTimeRange(r.TimeRange)
		if !ok {
			continue
		}
		if from <= to {
			if minute >= from && minute < to {
				return r.Rate
			}
		} else if minute >= from || minute < to {
			return r.Rate
		}
	}
	return 0
}

// parseTimeRange converts "HH:MM-HH:MM" to minutes of day.
func parseTimeRange(s string) (from, to int, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	from, ok = parseClock(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, 0, false
	}
	to, ok = parseClock(strings.TrimSpace(parts[1]))
	return from, to, ok
}

func parseClock(s string) (int, bool) {
	hm := strings.SplitN(s, ":", 2)
	if len(hm) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(hm[0])
	m, err2 := strconv.Atoi(hm[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
