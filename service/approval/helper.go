package approval

import (
	"context"
	"time"

	"github.com/viant/vaultflow/model"
)

// PendingFilter selects pending items
type PendingFilter func(item *model.Item) bool

// WithKind keeps items of the given kinds
func WithKind(kinds ...model.Kind) PendingFilter {
	return func(item *model.Item) bool {
		for _, kind := range kinds {
			if item.Kind == kind {
				return true
			}
		}
		return false
	}
}

// CreatedBefore keeps items last modified before t
func CreatedBefore(t time.Time) PendingFilter {
	return func(item *model.Item) bool {
		return item.ModTime.Before(t)
	}
}

// Filter returns the items matching every filter.
func Filter(items []*model.Item, filters ...PendingFilter) []*model.Item {
	if len(filters) == 0 {
		return items
	}
	ret := make([]*model.Item, 0, len(items))
outer:
	for _, item := range items {
		for _, filter := range filters {
			if !filter(item) {
				continue outer
			}
		}
		ret = append(ret, item)
	}
	return ret
}

// WaitForEvent consumes events until one for id arrives or timeout elapses.
// Events for other records are acknowledged and dropped.
func WaitForEvent(ctx context.Context, svc Service, id string, timeout time.Duration) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		msg, err := svc.Queue().Consume(ctx)
		if err != nil {
			return nil, err
		}
		event := msg.T()
		_ = msg.Ack()
		if event.Decision != nil && event.Decision.ID == id {
			return event, nil
		}
	}
}
