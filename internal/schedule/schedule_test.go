package schedule

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/picklepass/internal/model"
)

func mustDate(t *testing.T, g *Generator, s string) time.Time {
	t.Helper()
	d, err := g.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestHash(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{"a", 97},
		{"ab", 3105},
		{"hello", 99162322},
		{"–", 8211},
		{"😀", 1772899}, // surrogate pair hashed as two code units
	}
	for _, c := range cases {
		if got := Hash(c.in); got != c.want {
			t.Errorf("Hash(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestHashWrapsAt32Bits(t *testing.T) {
	s := strings.Repeat("z", 64)
	var want uint64
	for i := 0; i < len(s); i++ {
		want = (want*31 + uint64(s[i])) % (1 << 32)
	}
	if got := Hash(s); uint64(got) != want {
		t.Fatalf("Hash = %d, want %d", got, want)
	}
}

func TestRoster(t *testing.T) {
	r := Roster("s", 5)
	if len(r) != 5 {
		t.Fatalf("len = %d, want 5", len(r))
	}
	if r[0].ID != "s-p0" || r[4].ID != "s-p4" {
		t.Fatalf("unexpected ids %q %q", r[0].ID, r[4].ID)
	}
	if r[0].DisplayName != "Andre Z." || r[1].DisplayName != "Jordan K." {
		t.Fatalf("unexpected names %q %q", r[0].DisplayName, r[1].DisplayName)
	}
	for i, p := range r {
		if i%3 == 0 {
			if p.Rating != nil {
				t.Errorf("participant %d should have no rating", i)
			}
			continue
		}
		if p.Rating == nil {
			t.Fatalf("participant %d missing rating", i)
		}
		if *p.Rating < 2.60 || *p.Rating > 4.99 {
			t.Errorf("participant %d rating %v out of range", i, *p.Rating)
		}
	}
	if *r[1].Rating != 2.74 || *r[2].Rating != 2.75 {
		t.Fatalf("ratings = %v, %v; want 2.74, 2.75", *r[1].Rating, *r[2].Rating)
	}
}

func TestRosterEdgeCounts(t *testing.T) {
	if got := Roster("x", 0); len(got) != 0 {
		t.Fatalf("count 0 gave %d participants", len(got))
	}
	if got := Roster("x", -3); len(got) != 0 {
		t.Fatalf("negative count gave %d participants", len(got))
	}
	long, short := Roster("seed", 12), Roster("seed", 4)
	if !reflect.DeepEqual(long[:4], short) {
		t.Fatal("shorter roster is not a prefix of the longer one")
	}
}

func TestGenerateScenarioFirstWeekOf2024(t *testing.T) {
	g := NewGenerator(time.UTC)
	days := g.Generate("x", mustDate(t, g, "2024-01-01"), 7)
	if len(days) != 7 {
		t.Fatalf("len = %d, want 7", len(days))
	}

	titles := func(b model.DayBlock) []model.SessionType {
		out := make([]model.SessionType, 0, len(b.Sessions))
		for _, s := range b.Sessions {
			out = append(out, s.Type)
		}
		return out
	}
	cases := []struct {
		day  int
		date string
		want []model.SessionType
	}{
		{0, "2024-01-01", []model.SessionType{model.SessionOpenPlay, model.SessionRatedNight}},
		{2, "2024-01-03", []model.SessionType{model.SessionOpenPlay, model.SessionRatedNight, model.SessionLeague}},
		{5, "2024-01-06", []model.SessionType{model.SessionOpenPlay, model.SessionClinic}},
		{6, "2024-01-07", []model.SessionType{model.SessionOpenPlay, model.SessionClinic}},
	}
	for _, c := range cases {
		b := days[c.day]
		if b.DateISO != c.date {
			t.Errorf("day %d date = %s, want %s", c.day, b.DateISO, c.date)
		}
		if got := titles(b); !reflect.DeepEqual(got, c.want) {
			t.Errorf("day %d sessions = %v, want %v", c.day, got, c.want)
		}
	}

	monday := days[0].Sessions
	if monday[0].Booked != 11 || monday[1].Booked != 20 {
		t.Errorf("monday booked = %d/%d, want 11/20", monday[0].Booked, monday[1].Booked)
	}
	saturday := days[5].Sessions
	if saturday[0].Booked != 10 || saturday[1].Booked != 10 {
		t.Errorf("saturday booked = %d/%d, want 10/10", saturday[0].Booked, saturday[1].Booked)
	}
	if days[6].Sessions[1].Booked != 8 {
		t.Errorf("sunday clinic booked = %d, want 8", days[6].Sessions[1].Booked)
	}
	if got := days[2].Sessions[2].Booked; got != 22 {
		t.Errorf("league booked = %d, want 22", got)
	}

	wantID := "x__2024-01-01__open-play-(level-1–3)__2024-01-01T09:00:00"
	if monday[0].ID != wantID {
		t.Errorf("id = %q, want %q", monday[0].ID, wantID)
	}
	if monday[1].StartISO != "2024-01-01T18:00:00" || monday[1].EndISO != "2024-01-01T20:00:00" {
		t.Errorf("dupr window = %s..%s", monday[1].StartISO, monday[1].EndISO)
	}
}

func TestGenerateInvariants(t *testing.T) {
	g := NewGenerator(time.UTC)
	days := g.Generate("the-cranky-pickle", mustDate(t, g, "2024-02-26"), 21)
	for i, b := range days {
		if i > 0 {
			prev, _ := g.ParseDate(days[i-1].DateISO)
			cur, _ := g.ParseDate(b.DateISO)
			if cur.Sub(prev) != 24*time.Hour {
				t.Fatalf("gap between %s and %s", days[i-1].DateISO, b.DateISO)
			}
		}
		for j, s := range b.Sessions {
			if len(s.Roster) != s.Booked {
				t.Errorf("%s: roster %d != booked %d", s.ID, len(s.Roster), s.Booked)
			}
			if s.Booked > s.Capacity {
				t.Errorf("%s: booked %d > capacity %d", s.ID, s.Booked, s.Capacity)
			}
			if j > 0 && s.StartsAt.Before(b.Sessions[j-1].StartsAt) {
				t.Errorf("%s: sessions not sorted by start", b.DateISO)
			}
			if !strings.HasPrefix(s.ID, "the-cranky-pickle__"+b.DateISO+"__") {
				t.Errorf("id %q does not carry facility and date", s.ID)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewGenerator(time.UTC).Generate("austin-pickle-ranch", time.Date(2025, 3, 1, 15, 4, 0, 0, time.UTC), 30)
	b := NewGenerator(time.UTC).Generate("austin-pickle-ranch", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 30)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two generations of the same window differ")
	}
}

func TestGeneratePaginationConcatenates(t *testing.T) {
	g := NewGenerator(time.UTC)
	d0 := mustDate(t, g, "2024-12-28")
	whole := g.Generate("x", d0, 12)

	first := g.Generate("x", d0, 5)
	next, ok := g.NextStart(first)
	if !ok {
		t.Fatal("NextStart on non-empty page returned !ok")
	}
	second := g.Generate("x", next, 7)
	if got := append(first, second...); !reflect.DeepEqual(got, whole) {
		t.Fatal("paged windows do not concatenate to the whole window")
	}
}

func TestGenerateEmptyWindow(t *testing.T) {
	g := NewGenerator(time.UTC)
	if got := g.Generate("x", time.Now(), 0); len(got) != 0 {
		t.Fatalf("numDays=0 gave %d blocks", len(got))
	}
	if _, ok := g.NextStart(nil); ok {
		t.Fatal("NextStart(nil) returned ok")
	}
}

func TestGenerateAcrossDSTKeepsWallClock(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	g := NewGenerator(loc)
	days := g.Generate("x", time.Date(2024, 3, 9, 0, 0, 0, 0, loc), 3)
	for _, b := range days {
		if got := b.Sessions[0].StartISO; got != b.DateISO+"T09:00:00" {
			t.Errorf("open play start = %s on %s", got, b.DateISO)
		}
	}
}

func TestSlugTitle(t *testing.T) {
	cases := map[string]string{
		"Drills & Skills Clinic": "drills-&-skills-clinic",
		"3.5+  League\tNight":    "3.5+-league-night",
		"Open Play (Level 1–3)":  "open-play-(level-1–3)",
	}
	for in, want := range cases {
		if got := slugTitle(in); got != want {
			t.Errorf("slugTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
