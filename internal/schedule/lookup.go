package schedule

import (
	"errors"
	"time"

	"github.com/iliyamo/picklepass/internal/model"
)

// HorizonDays is how far ahead of today session lookup searches.
const HorizonDays = 60

// ErrSessionNotFound is returned when no session with the requested ID
// exists inside the lookup horizon.
var ErrSessionNotFound = errors.New("session not found")

// Lookup finds single sessions by ID.  It regenerates the horizon window
// from today on every call; IDs for dates past the horizon are not found
// even when they are well formed.
type Lookup struct {
	Generator *Generator
	Horizon   int
	Now       func() time.Time
}

// NewLookup returns a lookup over g with the default horizon and wall clock.
func NewLookup(g *Generator) *Lookup {
	return &Lookup{Generator: g, Horizon: HorizonDays, Now: time.Now}
}

// Find returns the session with sessionID at facilitySlug.
func (l *Lookup) Find(facilitySlug, sessionID string) (model.Session, error) {
	if sessionID == "" {
		return model.Session{}, ErrSessionNotFound
	}
	today := l.Generator.Today(l.Now())
	for _, day := range l.Generator.Generate(facilitySlug, today, l.Horizon) {
		for _, s := range day.Sessions {
			if s.ID == sessionID {
				return s, nil
			}
		}
	}
	return model.Session{}, ErrSessionNotFound
}
