package repository

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"

    "github.com/iliyamo/picklepass/internal/kvstore"
    "github.com/iliyamo/picklepass/internal/model"
)

func record(id, session, email string) model.BookingRecord {
    return model.BookingRecord{
        BookingID:    id,
        SessionID:    session,
        FacilitySlug: "the-cranky-pickle",
        GuestName:    "Guest " + id,
        GuestEmail:   email,
        CreatedAtISO: "2024-01-01T12:00:00Z",
        AmountCents:  1000,
        Currency:     "USD",
    }
}

// failingStore fails every call with err.
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte) error   { return f.err }

// writeFailStore reads from an inner store but refuses writes.
type writeFailStore struct{ kvstore.Store }

func (writeFailStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

// losingSwapper reports a lost race on every compare-and-swap.
type losingSwapper struct {
    *kvstore.Memory
    calls int
}

func (l *losingSwapper) CompareAndSwap(context.Context, string, []byte, []byte) (bool, error) {
    l.calls++
    return false, nil
}

func TestLedgerAnnScenario(t *testing.T) {
    ctx := context.Background()
    l := NewBookingLedger(kvstore.NewMemory())

    if err := l.Append(ctx, record("b1", "S", "Ann@X.com")); err != nil {
        t.Fatalf("first append: %v", err)
    }
    if err := l.Append(ctx, record("b2", "S", " ann@x.com ")); !errors.Is(err, ErrDuplicateBooking) {
        t.Fatalf("second append err = %v, want ErrDuplicateBooking", err)
    }
    got := l.List(ctx)
    if len(got) != 1 || got[0].BookingID != "b1" || got[0].GuestEmail != "ann@x.com" {
        t.Fatalf("ledger = %+v", got)
    }
    if err := l.Append(ctx, record("b3", "T", "ann@x.com")); err != nil {
        t.Fatalf("other session: %v", err)
    }
    if err := l.Append(ctx, record("b4", "S", "bob@x.com")); err != nil {
        t.Fatalf("other email: %v", err)
    }
    if n := l.Count(ctx); n != 3 {
        t.Fatalf("count = %d, want 3", n)
    }
}

func TestLedgerRejectsRepeatedBookingID(t *testing.T) {
    ctx := context.Background()
    l := NewBookingLedger(kvstore.NewMemory())

    if err := l.Append(ctx, record("b1", "S", "ann@x.com")); err != nil {
        t.Fatalf("first append: %v", err)
    }
    // Same attempt confirmed again under another email.
    if err := l.Append(ctx, record("b1", "S", "bob@x.com")); !errors.Is(err, ErrAttemptAlreadyConfirmed) {
        t.Fatalf("repeated id err = %v, want ErrAttemptAlreadyConfirmed", err)
    }
    if err := l.Append(ctx, record("b1", "T", "ann@x.com")); !errors.Is(err, ErrAttemptAlreadyConfirmed) {
        t.Fatalf("repeated id on other session err = %v, want ErrAttemptAlreadyConfirmed", err)
    }
    if n := l.Count(ctx); n != 1 {
        t.Fatalf("count = %d, want 1", n)
    }
}

func TestLedgerMostRecentFirst(t *testing.T) {
    ctx := context.Background()
    l := NewBookingLedger(kvstore.NewMemory())
    for i := 0; i < 4; i++ {
        if err := l.Append(ctx, record(fmt.Sprintf("b%d", i), fmt.Sprintf("S%d", i), "a@b.c")); err != nil {
            t.Fatalf("append %d: %v", i, err)
        }
    }
    got := l.List(ctx)
    for i, want := range []string{"b3", "b2", "b1", "b0"} {
        if got[i].BookingID != want {
            t.Fatalf("position %d = %s, want %s", i, got[i].BookingID, want)
        }
    }
    if s := l.FindBySession(ctx, "S2"); len(s) != 1 || s[0].BookingID != "b2" {
        t.Fatalf("FindBySession = %+v", s)
    }
    if s := l.FindBySession(ctx, "nope"); len(s) != 0 {
        t.Fatalf("FindBySession(nope) = %+v", s)
    }
}

func TestLedgerPersistsWireFormat(t *testing.T) {
    ctx := context.Background()
    m := kvstore.NewMemory()
    l := NewBookingLedger(m)
    if err := l.Append(ctx, record("b1", "S", "ann@x.com")); err != nil {
        t.Fatalf("append: %v", err)
    }
    raw, err := m.Get(ctx, BookingsKey)
    if err != nil {
        t.Fatalf("raw get: %v", err)
    }
    want := `[{"bookingId":"b1","sessionId":"S","facilitySlug":"the-cranky-pickle","guestName":"Guest b1",` +
        `"guestEmail":"ann@x.com","createdAtISO":"2024-01-01T12:00:00Z","amountCents":1000,"currency":"USD"}]`
    if string(raw) != want {
        t.Fatalf("stored\n%s\nwant\n%s", raw, want)
    }
}

func TestLedgerMalformedDataReadsEmpty(t *testing.T) {
    ctx := context.Background()
    for _, bad := range []string{"not json", `{"a":1}`, "null", `[1,2]`} {
        m := kvstore.NewMemory()
        _ = m.Set(ctx, BookingsKey, []byte(bad))
        l := NewBookingLedger(m)
        if got := l.List(ctx); len(got) != 0 {
            t.Fatalf("%q: List = %+v", bad, got)
        }
        if err := l.Append(ctx, record("b1", "S", "a@b.c")); err != nil {
            t.Fatalf("%q: append over malformed data: %v", bad, err)
        }
        if got := l.List(ctx); len(got) != 1 {
            t.Fatalf("%q: List after append = %+v", bad, got)
        }
    }
}

func TestLedgerStoreErrors(t *testing.T) {
    ctx := context.Background()
    boom := errors.New("boom")
    l := NewBookingLedger(failingStore{err: boom})
    if got := l.List(ctx); len(got) != 0 {
        t.Fatalf("List on failing store = %+v", got)
    }
    if err := l.Append(ctx, record("b1", "S", "a@b.c")); !errors.Is(err, boom) {
        t.Fatalf("Append err = %v, want wrapped boom", err)
    }

    m := kvstore.NewMemory()
    seeded := NewBookingLedger(m)
    _ = seeded.Append(ctx, record("b0", "S0", "a@b.c"))
    before, _ := m.Get(ctx, BookingsKey)

    wf := NewBookingLedger(writeFailStore{m})
    if err := wf.Append(ctx, record("b1", "S1", "a@b.c")); err == nil {
        t.Fatal("expected the write failure to surface")
    }
    after, _ := m.Get(ctx, BookingsKey)
    if string(before) != string(after) {
        t.Fatal("failed append modified the stored list")
    }
}

func TestLedgerContention(t *testing.T) {
    s := &losingSwapper{Memory: kvstore.NewMemory()}
    l := NewBookingLedger(s)
    if err := l.Append(context.Background(), record("b1", "S", "a@b.c")); !errors.Is(err, ErrLedgerContention) {
        t.Fatalf("err = %v, want ErrLedgerContention", err)
    }
    if s.calls != maxSwapAttempts {
        t.Fatalf("swap attempts = %d, want %d", s.calls, maxSwapAttempts)
    }
}

func TestLedgerProfilesAreIsolated(t *testing.T) {
    ctx := context.Background()
    root := NewBookingLedger(kvstore.NewMemory())
    a, b := root.ForProfile("alice"), root.ForProfile("bob")
    if err := a.Append(ctx, record("b1", "S", "same@x.com")); err != nil {
        t.Fatalf("alice: %v", err)
    }
    if err := b.Append(ctx, record("b2", "S", "same@x.com")); err != nil {
        t.Fatalf("bob: %v", err)
    }
    if a.Count(ctx) != 1 || b.Count(ctx) != 1 || root.Count(ctx) != 0 {
        t.Fatalf("counts a=%d b=%d root=%d", a.Count(ctx), b.Count(ctx), root.Count(ctx))
    }
}

func TestLedgerConcurrentAppendsKeepUniqueness(t *testing.T) {
    ctx := context.Background()
    root := NewBookingLedger(kvstore.NewMemory())

    var wg sync.WaitGroup
    errs := make(chan error, 20)
    for i := 0; i < 20; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            // Each goroutine gets its own handle, as separate requests do.
            l := root.ForProfile("tab")
            errs <- l.Append(ctx, record(fmt.Sprintf("b%d", i), fmt.Sprintf("S%d", i%5), "ann@x.com"))
        }(i)
    }
    wg.Wait()
    close(errs)

    ok, dup := 0, 0
    for err := range errs {
        switch {
        case err == nil:
            ok++
        case errors.Is(err, ErrDuplicateBooking):
            dup++
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    if ok != 5 || dup != 15 {
        t.Fatalf("ok=%d dup=%d, want 5/15", ok, dup)
    }
    if n := root.ForProfile("tab").Count(ctx); n != 5 {
        t.Fatalf("stored %d bookings, want 5", n)
    }
}
