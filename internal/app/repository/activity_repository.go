package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

// ActivityRepository defines audit log persistence
type ActivityRepository interface {
	Append(ctx context.Context, activity *model.Activity) error
	FindByUser(ctx context.Context, userID string) ([]model.Activity, error)
	// TrimToCap drops the oldest entries beyond cap and returns how
	// many were removed. Called from the scheduler, never per append.
	TrimToCap(ctx context.Context, cap int) (int, error)
}

type activityRepository struct {
	store store.Store
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(s store.Store) ActivityRepository {
	return &activityRepository{store: s}
}

func (r *activityRepository) Append(ctx context.Context, activity *model.Activity) error {
	_, err := r.store.Add(ctx, "activities", activity)
	return err
}

func (r *activityRepository) FindByUser(ctx context.Context, userID string) ([]model.Activity, error) {
	raws, err := r.store.Query(ctx, "activities", "userId", userID)
	if err != nil {
		return nil, err
	}
	activities := make([]model.Activity, 0, len(raws))
	for _, raw := range raws {
		var activity model.Activity
		if err := json.Unmarshal(raw, &activity); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	return activities, nil
}

func (r *activityRepository) TrimToCap(ctx context.Context, cap int) (int, error) {
	raws, err := r.store.GetAll(ctx, "activities")
	if err != nil {
		return 0, err
	}
	if len(raws) <= cap {
		return 0, nil
	}

	activities := make([]model.Activity, 0, len(raws))
	for _, raw := range raws {
		var activity model.Activity
		if err := json.Unmarshal(raw, &activity); err != nil {
			continue
		}
		activities = append(activities, activity)
	}
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.Before(activities[j].Timestamp)
	})

	excess := len(activities) - cap
	if excess <= 0 {
		return 0, nil
	}
	removed := 0
	for _, activity := range activities[:excess] {
		if err := r.store.Delete(ctx, "activities", activity.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
