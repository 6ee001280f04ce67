package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianpos/meridian/internal/shared"
)

type memoryRepo struct {
	events    map[int64]Event
	discounts map[int64]ProductDiscount
	nextID    int64
	calls     int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{events: make(map[int64]Event), discounts: make(map[int64]ProductDiscount)}
}

func (r *memoryRepo) ActiveDiscounts(ctx context.Context, productID int64, at time.Time) ([]ProductDiscount, error) {
	r.calls++
	var out []ProductDiscount
	for _, d := range r.discounts {
		if d.ProductID != productID || d.DeletedAt != nil {
			continue
		}
		evt, ok := r.events[d.EventID]
		if !ok || evt.DeletedAt != nil {
			continue
		}
		if at.Before(evt.StartsAt) || at.After(evt.EndsAt) {
			continue
		}
		out = append(out, d)
	}
	// Largest amount first, lowest id breaks ties, matching the SQL ordering.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Amount > out[i].Amount || (out[j].Amount == out[i].Amount && out[j].ID < out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *memoryRepo) ActiveEvents(ctx context.Context, at time.Time) ([]ActiveEvent, error) {
	var out []ActiveEvent
	for _, evt := range r.events {
		if evt.DeletedAt != nil || at.Before(evt.StartsAt) || at.After(evt.EndsAt) {
			continue
		}
		entry := ActiveEvent{Event: evt}
		for _, d := range r.discounts {
			if d.EventID == evt.ID && d.DeletedAt == nil {
				entry.Discounts = append(entry.Discounts, d)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *memoryRepo) CreateEvent(ctx context.Context, event Event) (Event, error) {
	r.nextID++
	event.ID = r.nextID
	r.events[event.ID] = event
	return event, nil
}

func (r *memoryRepo) LinkDiscount(ctx context.Context, link ProductDiscount) (ProductDiscount, error) {
	r.nextID++
	link.ID = r.nextID
	r.discounts[link.ID] = link
	return link, nil
}

func seedEvent(t *testing.T, repo *memoryRepo, start, end time.Time) Event {
	t.Helper()
	evt, err := repo.CreateEvent(context.Background(), Event{Name: "Promo", StartsAt: start, EndsAt: end})
	require.NoError(t, err)
	return evt
}

func TestResolveWithinWindow(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	evt := seedEvent(t, repo, now.Add(-time.Hour), now.Add(time.Hour))
	_, err := repo.LinkDiscount(ctx, ProductDiscount{EventID: evt.ID, ProductID: 4, Amount: 200})
	require.NoError(t, err)

	d, ok, err := svc.Resolve(ctx, 4, now)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 200.0, d.Amount, 0.001)

	_, ok, err = svc.Resolve(ctx, 4, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.False(t, ok, "outside the window no discount applies")

	_, ok, err = svc.Resolve(ctx, 99, now)
	require.NoError(t, err)
	require.False(t, ok, "unlinked product gets no discount")
}

func TestResolveLargestDiscountWins(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	first := seedEvent(t, repo, now.Add(-time.Hour), now.Add(time.Hour))
	second := seedEvent(t, repo, now.Add(-30*time.Minute), now.Add(30*time.Minute))
	_, err := repo.LinkDiscount(ctx, ProductDiscount{EventID: first.ID, ProductID: 1, Amount: 150})
	require.NoError(t, err)
	bigger, err := repo.LinkDiscount(ctx, ProductDiscount{EventID: second.ID, ProductID: 1, Amount: 300})
	require.NoError(t, err)

	d, ok, err := svc.Resolve(ctx, 1, now)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bigger.ID, d.ID)
	require.InDelta(t, 300.0, d.Amount, 0.001)
}

func TestResolveSkipsTombstones(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	evt := seedEvent(t, repo, now.Add(-time.Hour), now.Add(time.Hour))
	link, err := repo.LinkDiscount(ctx, ProductDiscount{EventID: evt.ID, ProductID: 2, Amount: 500})
	require.NoError(t, err)

	deleted := link
	deleted.DeletedAt = &now
	repo.discounts[link.ID] = deleted

	_, ok, err := svc.Resolve(ctx, 2, now)
	require.NoError(t, err)
	require.False(t, ok, "tombstoned link must not apply")

	live := deleted
	live.DeletedAt = nil
	repo.discounts[link.ID] = live
	evtDeleted := repo.events[evt.ID]
	evtDeleted.DeletedAt = &now
	repo.events[evt.ID] = evtDeleted

	_, ok, err = svc.Resolve(ctx, 2, now)
	require.NoError(t, err)
	require.False(t, ok, "tombstoned event must not apply")
}

func TestCreateEventValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := svc.CreateEvent(ctx, CreateEventRequest{Name: "Backwards", StartsAt: now, EndsAt: now.Add(-time.Hour)})
	require.ErrorIs(t, err, shared.ErrValidation)
}

// gatedRepo blocks near-now lookups until released, so a test can hold a
// flight open while other resolutions run.
type gatedRepo struct {
	*memoryRepo
	window  time.Duration
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) ActiveDiscounts(ctx context.Context, productID int64, at time.Time) ([]ProductDiscount, error) {
	drift := time.Since(at)
	if drift < 0 {
		drift = -drift
	}
	if drift <= r.window {
		r.entered <- struct{}{}
		<-r.release
	}
	return r.memoryRepo.ActiveDiscounts(ctx, productID, at)
}

func TestHistoricalResolveDoesNotJoinNowFlight(t *testing.T) {
	repo := newMemoryRepo()
	ctx := context.Background()
	past := time.Now().UTC().Add(-30 * 24 * time.Hour)

	evt := seedEvent(t, repo, past.Add(-time.Hour), past.Add(time.Hour))
	_, err := repo.LinkDiscount(ctx, ProductDiscount{EventID: evt.ID, ProductID: 1, Amount: 500})
	require.NoError(t, err)

	gated := &gatedRepo{
		memoryRepo: repo,
		window:     time.Minute,
		entered:    make(chan struct{}, 1),
		release:    make(chan struct{}),
	}
	svc := NewService(gated, nil, 30*time.Second)

	var nowOK bool
	var nowErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, nowOK, nowErr = svc.Resolve(ctx, 1, time.Now())
	}()
	<-gated.entered

	// While the now-instant lookup is in flight, a historical resolve for
	// the same product must see the discount that was active back then.
	d, ok, err := svc.Resolve(ctx, 1, past)
	require.NoError(t, err)
	require.True(t, ok, "historical resolve must not be served the now-instant's result")
	require.InDelta(t, 500.0, d.Amount, 0.001)

	close(gated.release)
	<-done
	require.NoError(t, nowErr)
	require.False(t, nowOK, "no discount is active now")
}
