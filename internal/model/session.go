package model

import "time"

// SessionType is the closed set of session kinds a template can produce.
type SessionType string

const (
	SessionOpenPlay   SessionType = "open-play"
	SessionRatedNight SessionType = "rated-night"
	SessionLeague     SessionType = "league"
	SessionClinic     SessionType = "clinic"
)

// Label returns the short display name used next to a session title.
func (t SessionType) Label() string {
	switch t {
	case SessionOpenPlay:
		return "Open Play"
	case SessionRatedNight:
		return "DUPR Night"
	case SessionLeague:
		return "League"
	case SessionClinic:
		return "Clinic"
	}
	return string(t)
}

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case SessionOpenPlay, SessionRatedNight, SessionLeague, SessionClinic:
		return true
	}
	return false
}

// Expectations describes what a guest should expect when attending.
type Expectations struct {
	Format    string `json:"format"`
	Rotations string `json:"rotations"`
	Arrival   string `json:"arrival"`
	Equipment string `json:"equipment"`
	Rules     string `json:"rules"`
}

// Participant is one roster entry.  Rating is nil for players who have not
// published a DUPR rating.
type Participant struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Rating      *float64 `json:"dupr,omitempty"`
}

// Session is a materialized template instance for one concrete date.
// Sessions are recomputed from template rules on every request and never
// mutated after generation, so two generations for the same facility and
// date are identical.
//
// StartISO and EndISO hold the local wall-clock time without a zone
// (YYYY-MM-DDTHH:MM:SS) and participate in ID; StartsAt and EndsAt are the
// same instants in the schedule location.
//
// Invariant: len(Roster) == Booked and Booked <= Capacity.
type Session struct {
	ID           string        `json:"id"`
	FacilitySlug string        `json:"facilitySlug"`
	Title        string        `json:"title"`
	Type         SessionType   `json:"type"`
	StartISO     string        `json:"startISO"`
	EndISO       string        `json:"endISO"`
	StartsAt     time.Time     `json:"startsAt"`
	EndsAt       time.Time     `json:"endsAt"`
	LevelLabel   string        `json:"levelLabel"`
	Gated        bool          `json:"duprGated"`
	CourtGroup   string        `json:"courtGroup"`
	Capacity     int           `json:"capacity"`
	Booked       int           `json:"booked"`
	Description  string        `json:"description"`
	Expectations *Expectations `json:"expectations,omitempty"`
	Roster       []Participant `json:"roster"`
}

// SpotsLeft returns how many places remain before the session is full.
func (s Session) SpotsLeft() int {
	if s.Booked >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Booked
}

// DayBlock is one calendar day's time-sorted sessions for a facility.
type DayBlock struct {
	DateISO  string    `json:"dateISO"`
	Sessions []Session `json:"sessions"`
}
