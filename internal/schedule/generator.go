package schedule

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/iliyamo/picklepass/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	localLayout = "2006-01-02T15:04:05"
)

// Generator materializes day blocks from a template catalog.  It holds no
// mutable state: Generate is a pure function of its arguments, so
// overlapping or repeated calls never disagree.  Dates are calendar dates in
// Location.
type Generator struct {
	Catalog  Catalog
	Location *time.Location
}

// NewGenerator returns a generator over DefaultCatalog.  A nil loc means
// time.Local.
func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.Local
	}
	return &Generator{Catalog: DefaultCatalog(), Location: loc}
}

// Generate returns numDays consecutive day blocks starting at the calendar
// date of start (inclusive), in date order.  numDays <= 0 yields no blocks.
// Pagination is repeated calls where each start is the day after the last
// block of the previous window; see NextStart.
func (g *Generator) Generate(facilitySlug string, start time.Time, numDays int) []model.DayBlock {
	if numDays <= 0 {
		return []model.DayBlock{}
	}
	y, m, d := start.In(g.Location).Date()
	blocks := make([]model.DayBlock, 0, numDays)
	for i := 0; i < numDays; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, g.Location)
		blocks = append(blocks, g.Day(facilitySlug, day))
	}
	return blocks
}

// Day builds the block for a single calendar date.
func (g *Generator) Day(facilitySlug string, date time.Time) model.DayBlock {
	y, m, d := date.In(g.Location).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, g.Location)
	dateISO := midnight.Format(dateLayout)
	wd := midnight.Weekday()

	templates := g.Catalog.ForWeekday(wd)
	sessions := make([]model.Session, 0, len(templates))
	for _, t := range templates {
		sessions = append(sessions, g.materialize(facilitySlug, dateISO, y, m, d, wd, t))
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartsAt.Before(sessions[j].StartsAt)
	})
	return model.DayBlock{DateISO: dateISO, Sessions: sessions}
}

func (g *Generator) materialize(facilitySlug, dateISO string, y int, m time.Month, d int, wd time.Weekday, t Template) model.Session {
	startsAt := g.at(y, m, d, t.Start)
	endsAt := g.at(y, m, d, t.End)
	startISO := startsAt.Format(localLayout)

	booked := t.BookedOn(wd)
	if booked > t.Capacity {
		booked = t.Capacity
	}
	if booked < 0 {
		booked = 0
	}
	exp := t.Expectations

	return model.Session{
		ID:           SessionID(facilitySlug, dateISO, t.Title, startISO),
		FacilitySlug: facilitySlug,
		Title:        t.Title,
		Type:         t.Type,
		StartISO:     startISO,
		EndISO:       endsAt.Format(localLayout),
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		LevelLabel:   t.LevelLabel,
		Gated:        t.Gated,
		CourtGroup:   t.CourtGroup,
		Capacity:     t.Capacity,
		Booked:       booked,
		Description:  t.Description,
		Expectations: &exp,
		Roster:       Roster(t.RosterPrefix+"-"+dateISO, booked),
	}
}

// at builds the wall-clock time offset after midnight from hour and minute
// fields rather than adding a duration, so DST shifts never move a session.
func (g *Generator) at(y int, m time.Month, d int, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	mm := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, h, mm, 0, 0, g.Location)
}

// SessionID is the composite key {facility}__{date}__{slug(title)}__{start}.
func SessionID(facilitySlug, dateISO, title, startISO string) string {
	return facilitySlug + "__" + dateISO + "__" + slugTitle(title) + "__" + startISO
}

// slugTitle replaces every run of whitespace with a single dash and
// lower-cases the result.  Punctuation is kept as-is.
func slugTitle(title string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range title {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// Today returns local midnight of now in the generator's location.
func (g *Generator) Today(now time.Time) time.Time {
	y, m, d := now.In(g.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, g.Location)
}

// ParseDate parses a YYYY-MM-DD date in the generator's location.
func (g *Generator) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, g.Location)
}

// FormatDate renders t's calendar date in the generator's location.
func (g *Generator) FormatDate(t time.Time) string {
	return t.In(g.Location).Format(dateLayout)
}

// NextStart returns the date immediately after the last block, which is
// where the following page must begin.  ok is false for an empty slice or an
// unparsable date.
func (g *Generator) NextStart(blocks []model.DayBlock) (next time.Time, ok bool) {
	if len(blocks) == 0 {
		return time.Time{}, false
	}
	last, err := g.ParseDate(blocks[len(blocks)-1].DateISO)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := last.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, g.Location), true
}
