// Package registry materialises vault records into typed items across stages
// and derives aggregate counts.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/record"
	"github.com/viant/vaultflow/service/stage"
)

// Service enumerates items of a vault layout.
type Service struct {
	layout stage.Layout
	logger zerolog.Logger
}

// Option customises the registry.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a registry over layout.
func New(layout stage.Layout, options ...Option) *Service {
	ret := &Service{layout: layout, logger: zerolog.Nop()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Layout returns the underlying layout.
func (s *Service) Layout() stage.Layout {
	return s.layout
}

// Snapshot lists items of the given stages, or of every stage when none is
// given, sorted by stage then ID. Missing directories count as empty. The
// result is a best-effort view: records moved mid-scan may be missed.
func (s *Service) Snapshot(ctx context.Context, stages ...model.Stage) ([]*model.Item, error) {
	if len(stages) == 0 {
		stages = model.Stages
	}
	var items []*model.Item
	for _, aStage := range stages {
		for _, dir := range s.layout.Directories(aStage) {
			dirItems, err := s.List(ctx, dir)
			if err != nil {
				return nil, err
			}
			items = append(items, dirItems...)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Stage != items[j].Stage {
			return stageOrder(items[i].Stage) < stageOrder(items[j].Stage)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// List materialises the items of one directory.
func (s *Service) List(ctx context.Context, dir stage.Directory) ([]*model.Item, error) {
	entries, err := dir.List(ctx)
	if err != nil {
		if errors.Is(err, stage.ErrDirectoryUnavailable) {
			return nil, nil
		}
		return nil, err
	}
	items := make([]*model.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, Materialize(dir.Location(), entry))
	}
	return items, nil
}

// Lookup returns the item identified by id from a stage.
func (s *Service) Lookup(ctx context.Context, aStage model.Stage, id string) (*model.Item, error) {
	kind, base, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}
	dir := s.layout.Directory(aStage, kind)
	entry, err := dir.Read(ctx, model.FileName(base))
	if err != nil {
		return nil, err
	}
	location := dir.Location()
	location.Kind = kind
	return Materialize(location, entry), nil
}

// PendingCount returns the number of records held by the given stages,
// defaulting to the pending approval stage.
func (s *Service) PendingCount(ctx context.Context, stages ...model.Stage) (int, error) {
	if len(stages) == 0 {
		stages = []model.Stage{model.StagePendingApproval}
	}
	total := 0
	for _, aStage := range stages {
		for _, dir := range s.layout.Directories(aStage) {
			count, err := dir.Count(ctx)
			if err != nil {
				return 0, fmt.Errorf("failed to count %s: %w", dir.Location().URL, err)
			}
			total += count
		}
	}
	return total, nil
}

// Count is the number of records in one stage directory.
type Count struct {
	Stage model.Stage `json:"stage"`
	Kind  model.Kind  `json:"kind,omitempty"`
	Count int         `json:"count"`
}

// Counts returns per directory counts for every stage.
func (s *Service) Counts(ctx context.Context) ([]*Count, error) {
	var result []*Count
	for _, aStage := range model.Stages {
		for _, dir := range s.layout.Directories(aStage) {
			count, err := dir.Count(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to count %s: %w", dir.Location().URL, err)
			}
			location := dir.Location()
			result = append(result, &Count{Stage: location.Stage, Kind: location.Kind, Count: count})
		}
	}
	return result, nil
}

// Materialize decodes an entry into a typed item. Records of stages without
// kind directories take their kind from a "kind" or "type" header, falling back to files.
func Materialize(location stage.Location, entry *stage.Entry) *model.Item {
	rec := record.Decode(entry.Data)
	kind := location.Kind
	if kind == "" {
		kind = model.KindFiles
		if value := rec.Metadata.Lookup("kind", "type"); value != "" {
			kind = model.Kind(value)
		}
	}
	item := &model.Item{
		ID:       model.FormatID(kind, model.BaseName(entry.Name)),
		Kind:     kind,
		Stage:    location.Stage,
		Name:     entry.Name,
		URL:      entry.URL,
		Metadata: rec.Metadata,
		Body:     rec.Body,
		ModTime:  entry.ModTime,
	}
	item.Decorate()
	return item
}

func stageOrder(aStage model.Stage) int {
	for i, candidate := range model.Stages {
		if candidate == aStage {
			return i
		}
	}
	return len(model.Stages)
}
