package schedule

import (
	"time"

	"github.com/iliyamo/picklepass/internal/model"
)

// Template is a static rule that materializes into at most one session per
// applicable day.  Start and End are offsets from local midnight.
type Template struct {
	Title        string
	Type         model.SessionType
	Start        time.Duration
	End          time.Duration
	Capacity     int
	LevelLabel   string
	Gated        bool
	CourtGroup   string
	RosterPrefix string
	Description  string
	Expectations model.Expectations

	// AppliesOn reports whether the template runs on the weekday.
	AppliesOn func(time.Weekday) bool
	// BookedOn returns the booked headcount for the weekday before clamping.
	BookedOn func(time.Weekday) int
}

// Catalog is an ordered template table.  Order only matters for ties in
// start time, which the current table does not have.
type Catalog []Template

// ForWeekday returns the templates that apply on wd, in catalog order.
func (c Catalog) ForWeekday(wd time.Weekday) []Template {
	out := make([]Template, 0, len(c))
	for _, t := range c {
		if t.AppliesOn(wd) {
			out = append(out, t)
		}
	}
	return out
}

func clock(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

func isWeekend(wd time.Weekday) bool { return wd == time.Saturday || wd == time.Sunday }

// DefaultCatalog is the facility-independent rule table every facility uses.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Title:        "Open Play (Level 1–3)",
			Type:         model.SessionOpenPlay,
			Start:        clock(9, 0),
			End:          clock(11, 0),
			Capacity:     24,
			LevelLabel:   "1–3",
			CourtGroup:   "Courts 1–4",
			RosterPrefix: "op",
			Description:  "Social open play with quick rotations. Great for newer players. Expect mixed games and friendly vibes.",
			Expectations: model.Expectations{
				Format:    "Round robin rotations",
				Rotations: "Rotate every game; partners change frequently",
				Arrival:   "Arrive 10 minutes early for check-in and warm-up",
				Equipment: "Balls provided; bring your own paddle + water",
				Rules:     "Be welcoming; if it’s crowded, keep games moving",
			},
			AppliesOn: func(time.Weekday) bool { return true },
			BookedOn:  func(wd time.Weekday) int { return 10 + int(wd)%6 },
		},
		{
			Title:        "DUPR Rated Night (3.0–3.5)",
			Type:         model.SessionRatedNight,
			Start:        clock(18, 0),
			End:          clock(20, 0),
			Capacity:     32,
			LevelLabel:   "3.0–3.5",
			Gated:        true,
			CourtGroup:   "Courts 5–8",
			RosterPrefix: "dupr",
			Description:  "Structured games intended for DUPR reporting. Players are expected to be within the level range.",
			Expectations: model.Expectations{
				Format:    "Structured games for rating",
				Rotations: "Games assigned by organizer; keep scores accurate",
				Arrival:   "Arrive 15 minutes early (warm-up + bracket assignment)",
				Equipment: "Balls provided; bring paddle; rating required/expected",
				Rules:     "Stay within level range; respect organizer assignments",
			},
			AppliesOn: func(wd time.Weekday) bool { return wd >= time.Monday && wd <= time.Friday },
			BookedOn:  func(wd time.Weekday) int { return 18 + int(wd)*2 },
		},
		{
			Title:        "3.5+ League Night",
			Type:         model.SessionLeague,
			Start:        clock(20, 15),
			End:          clock(22, 0),
			Capacity:     24,
			LevelLabel:   "3.5+",
			CourtGroup:   "Courts 1–4",
			RosterPrefix: "league",
			Description:  "Competitive league matches. Fixed teams. Arrive 10 minutes early for check-in and warm-up.",
			Expectations: model.Expectations{
				Format:    "League matches (fixed teams)",
				Rotations: "Schedule-based; courts assigned by organizer",
				Arrival:   "Arrive 10 minutes early; late arrivals may forfeit",
				Equipment: "Bring paddle; balls provided",
				Rules:     "Good sportsmanship; report scores promptly",
			},
			AppliesOn: func(wd time.Weekday) bool { return wd == time.Wednesday },
			BookedOn:  func(time.Weekday) int { return 22 },
		},
		{
			Title:        "Drills & Skills Clinic",
			Type:         model.SessionClinic,
			Start:        clock(12, 0),
			End:          clock(13, 30),
			Capacity:     16,
			LevelLabel:   "All Levels",
			CourtGroup:   "Courts 5–6",
			RosterPrefix: "clinic",
			Description:  "Coach-led fundamentals + situational drilling (dinks, drops, transitions). Bring water and a good attitude.",
			Expectations: model.Expectations{
				Format:    "Coach-led drills + live reps",
				Rotations: "Rotate through stations every 10–15 minutes",
				Arrival:   "Arrive 10 minutes early to stretch and warm-up",
				Equipment: "Bring paddle; balls provided; wear court shoes",
				Rules:     "Be coachable; keep reps moving; ask questions",
			},
			AppliesOn: isWeekend,
			BookedOn: func(wd time.Weekday) int {
				if wd == time.Saturday {
					return 7 + 3
				}
				return 7 + 1
			},
		},
	}
}
