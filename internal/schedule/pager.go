package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/picklepass/internal/logger"
	"github.com/iliyamo/picklepass/internal/model"
)

// DefaultPageDays is the size of the first and every following page.
const DefaultPageDays = 7

// ErrPageInFlight is returned by NextPage while another page is loading.
var ErrPageInFlight = errors.New("schedule: page request already in flight")

// Pager is the pagination consumer for one facility.  It owns the
// materialized day list and only ever extends it from the day after the last
// block, so no date is requested twice.  At most one page load runs at a
// time; overlapping NextPage calls are rejected rather than queued.
type Pager struct {
	gen      *Generator
	facility string
	pageDays int
	latency  time.Duration

	loading atomic.Bool

	mu   sync.Mutex
	days []model.DayBlock
}

// NewPager materializes the first page starting at start and returns the
// pager.  latency is an artificial delay applied before every following
// page, mirroring a remote fetch.
func NewPager(gen *Generator, facilitySlug string, start time.Time, pageDays int, latency time.Duration) *Pager {
	if pageDays <= 0 {
		pageDays = DefaultPageDays
	}
	return &Pager{
		gen:      gen,
		facility: facilitySlug,
		pageDays: pageDays,
		latency:  latency,
		days:     gen.Generate(facilitySlug, start, pageDays),
	}
}

// Days returns a copy of every block materialized so far.
func (p *Pager) Days() []model.DayBlock {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.DayBlock, len(p.days))
	copy(out, p.days)
	return out
}

// Loading reports whether a page request is pending.
func (p *Pager) Loading() bool { return p.loading.Load() }

// NextPage waits out the configured latency, generates the next window and
// appends it.  It returns the newly added blocks.  A call made while another
// is pending returns ErrPageInFlight and changes nothing; a context cancelled
// during the latency wait returns ctx.Err() and changes nothing.
func (p *Pager) NextPage(ctx context.Context) ([]model.DayBlock, error) {
	if !p.loading.CompareAndSwap(false, true) {
		logger.Debug("SchedulePager:NextPage:InFlight", "facility", p.facility)
		return nil, ErrPageInFlight
	}
	defer p.loading.Store(false)

	if p.latency > 0 {
		t := time.NewTimer(p.latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	next, ok := p.gen.NextStart(p.days)
	if !ok {
		next = p.gen.Today(time.Now())
	}
	more := p.gen.Generate(p.facility, next, p.pageDays)
	p.days = append(p.days, more...)
	logger.Debug("SchedulePager:NextPage:Loaded", "facility", p.facility, "from", p.gen.FormatDate(next), "days", len(more))
	return more, nil
}
