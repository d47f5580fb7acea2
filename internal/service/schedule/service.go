package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/brils-gym/booking-api/internal/model"
	"github.com/brils-gym/booking-api/internal/repository"
	"github.com/brils-gym/booking-api/pkg/timeutil"
)

const (
	weeklySlotsCacheKey = "weekly_slots"

	// The weekly template changes rarely; overrides are date-bound and may
	// be edited on short notice, so they get a much shorter TTL.
	weeklySlotsTTL = 15 * time.Minute
	overridesTTL   = 1 * time.Minute
)

// Service resolves the effective bookable windows for a date by merging the
// weekly template with that date's overrides.
type Service struct {
	repo  repository.ScheduleRepository
	cache *cache.Cache
}

func NewService(repo repository.ScheduleRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(weeklySlotsTTL, 30*time.Minute),
	}
}

// ResolveDay returns the effective windows for date (YYYY-MM-DD or anything
// with a leading date), ordered by start time ascending. Overrides apply in
// the order the store returns them (id ascending); when several target the
// same slot the last applied wins.
func (s *Service) ResolveDay(ctx context.Context, date string) ([]*model.EffectiveWindow, error) {
	ymd := timeutil.NormalizeYMD(date)

	day, err := time.Parse("2006-01-02", ymd)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	slots, err := s.weeklySlots(ctx)
	if err != nil {
		return nil, err
	}

	overrides, err := s.overridesByDate(ctx, ymd)
	if err != nil {
		return nil, err
	}

	return Resolve(day.Weekday(), slots, overrides), nil
}

// Resolve merges the weekday's template slots with the date's overrides.
// Pure: no I/O, callers supply overrides in their intended application
// order.
func Resolve(weekday time.Weekday, slots []*model.WeeklySlot, overrides []*model.Override) []*model.EffectiveWindow {
	windows := make([]*model.EffectiveWindow, 0, len(slots))
	bySlot := make(map[int64]*model.EffectiveWindow)

	for _, slot := range slots {
		if slot.Weekday != weekday {
			continue
		}
		w := &model.EffectiveWindow{
			SlotID:    ptr(slot.ID),
			StartTime: timeutil.ToStorageTime(slot.StartTime),
			EndTime:   timeutil.ToStorageTime(slot.EndTime),
			Capacity:  slot.Capacity,
		}
		windows = append(windows, w)
		bySlot[slot.ID] = w
	}

	for _, ov := range overrides {
		switch ov.Action {
		case model.OverrideActionRemove:
			if ov.SlotID == nil {
				continue
			}
			if w, ok := bySlot[*ov.SlotID]; ok {
				windows = remove(windows, w)
				delete(bySlot, *ov.SlotID)
			}

		case model.OverrideActionModify:
			if ov.SlotID == nil {
				continue
			}
			w, ok := bySlot[*ov.SlotID]
			if !ok {
				continue
			}
			if ov.StartTime != nil {
				w.StartTime = timeutil.ToStorageTime(*ov.StartTime)
			}
			if ov.EndTime != nil {
				w.EndTime = timeutil.ToStorageTime(*ov.EndTime)
			}
			if ov.Capacity != nil {
				w.Capacity = *ov.Capacity
			}

		case model.OverrideActionAdd:
			if ov.StartTime == nil || ov.EndTime == nil {
				continue
			}
			w := &model.EffectiveWindow{
				SlotID:    ov.SlotID,
				StartTime: timeutil.ToStorageTime(*ov.StartTime),
				EndTime:   timeutil.ToStorageTime(*ov.EndTime),
			}
			if ov.Capacity != nil {
				w.Capacity = *ov.Capacity
			}
			windows = append(windows, w)
			if ov.SlotID != nil {
				bySlot[*ov.SlotID] = w
			}
		}
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].StartTime < windows[j].StartTime
	})
	return windows
}

// OverridesRange fetches overrides for the next daysAhead days, today
// inclusive.
func (s *Service) OverridesRange(ctx context.Context, daysAhead int) ([]*model.Override, error) {
	if daysAhead <= 0 {
		daysAhead = 14
	}
	today := time.Now()
	from := timeutil.ToYMD(today)
	to := timeutil.ToYMD(today.AddDate(0, 0, daysAhead))
	return s.repo.ListOverridesRange(ctx, from, to)
}

func (s *Service) weeklySlots(ctx context.Context) ([]*model.WeeklySlot, error) {
	if cached, found := s.cache.Get(weeklySlotsCacheKey); found {
		return cached.([]*model.WeeklySlot), nil
	}

	slots, err := s.repo.ListWeeklySlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly slots: %w", err)
	}

	s.cache.Set(weeklySlotsCacheKey, slots, weeklySlotsTTL)
	return slots, nil
}

func (s *Service) overridesByDate(ctx context.Context, ymd string) ([]*model.Override, error) {
	cacheKey := "overrides:" + ymd
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]*model.Override), nil
	}

	overrides, err := s.repo.ListOverridesByDate(ctx, ymd)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	s.cache.Set(cacheKey, overrides, overridesTTL)
	return overrides, nil
}

func remove(windows []*model.EffectiveWindow, target *model.EffectiveWindow) []*model.EffectiveWindow {
	out := windows[:0]
	for _, w := range windows {
		if w != target {
			out = append(out, w)
		}
	}
	return out
}

func ptr(v int64) *int64 {
	return &v
}
