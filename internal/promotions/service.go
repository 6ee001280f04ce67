package promotions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/meridianpos/meridian/internal/shared"
)

// Service resolves the active promotional discount for a product at a given
// instant.
type Service struct {
	repo     Repository
	cache    *DiscountCache
	validate *validator.Validate
	group    singleflight.Group

	// cacheWindow bounds how far the requested instant may drift from now
	// before the cache is bypassed; cached sets are only valid for "now".
	cacheWindow time.Duration
}

// NewService builds Service. cache may be nil.
func NewService(repo Repository, cache *DiscountCache, cacheWindow time.Duration) *Service {
	if cacheWindow <= 0 {
		cacheWindow = 30 * time.Second
	}
	return &Service{repo: repo, cache: cache, validate: validator.New(), cacheWindow: cacheWindow}
}

// Resolve returns the discount to apply for productID at the given instant.
// When several promotions overlap, the single largest discount wins; equal
// amounts break ties on the lowest link id. The boolean reports whether any
// discount was active.
func (s *Service) Resolve(ctx context.Context, productID int64, at time.Time) (ProductDiscount, bool, error) {
	if productID <= 0 {
		return ProductDiscount{}, false, shared.ValidationError("product id must be positive")
	}
	discounts, err := s.activeSet(ctx, productID, at)
	if err != nil {
		return ProductDiscount{}, false, err
	}
	if len(discounts) == 0 {
		return ProductDiscount{}, false, nil
	}
	// Repository ordering already puts the winner first.
	return discounts[0], true, nil
}

func (s *Service) activeSet(ctx context.Context, productID int64, at time.Time) ([]ProductDiscount, error) {
	drift := time.Since(at)
	if drift < 0 {
		drift = -drift
	}
	if drift > s.cacheWindow {
		// Historical and future instants read the repository directly:
		// their result depends on at, so they must not share a flight
		// with (or populate the cache for) now-instant resolutions.
		return s.repo.ActiveDiscounts(ctx, productID, at)
	}

	if discounts, ok := s.cache.Get(ctx, productID); ok {
		return discounts, nil
	}

	result, err, _ := s.group.Do(strconv.FormatInt(productID, 10), func() (any, error) {
		discounts, err := s.repo.ActiveDiscounts(ctx, productID, at)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, productID, discounts)
		return discounts, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]ProductDiscount), nil
}

// ActiveEvents lists events whose window contains at, with their live
// discount links, for read-side consumers.
func (s *Service) ActiveEvents(ctx context.Context, at time.Time) ([]ActiveEvent, error) {
	return s.repo.ActiveEvents(ctx, at)
}

// CreateEvent validates and persists a promotional window.
func (s *Service) CreateEvent(ctx context.Context, req CreateEventRequest) (Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return Event{}, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	if !req.EndsAt.After(req.StartsAt) {
		return Event{}, shared.ValidationError("event window must end after it starts")
	}
	return s.repo.CreateEvent(ctx, Event{Name: req.Name, StartsAt: req.StartsAt, EndsAt: req.EndsAt})
}

// LinkDiscount validates and persists an event-product discount link, then
// invalidates the product's cached set.
func (s *Service) LinkDiscount(ctx context.Context, req LinkDiscountRequest) (ProductDiscount, error) {
	if err := s.validate.Struct(req); err != nil {
		return ProductDiscount{}, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	link, err := s.repo.LinkDiscount(ctx, ProductDiscount{EventID: req.EventID, ProductID: req.ProductID, Amount: req.Amount})
	if err != nil {
		return ProductDiscount{}, err
	}
	s.cache.Invalidate(ctx, req.ProductID)
	return link, nil
}
