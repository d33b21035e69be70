// Package vault implements approval.Service over a stage layout: decisions
// are file moves between stage directories, preceded by the external side
// effect when the record's kind requires one.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/viant/vaultflow/internal/clock"
	"github.com/viant/vaultflow/internal/idgen"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/approval"
	"github.com/viant/vaultflow/service/dispatcher"
	"github.com/viant/vaultflow/service/messaging"
	qmem "github.com/viant/vaultflow/service/messaging/memory"
	"github.com/viant/vaultflow/service/registry"
	"github.com/viant/vaultflow/service/stage"
	"github.com/viant/vaultflow/tracing"
)

// Dispatcher performs the side effect of an approved item.
type Dispatcher interface {
	Execute(ctx context.Context, item *model.Item) *dispatcher.Outcome
}

type service struct {
	registry    *registry.Service
	layout      stage.Layout
	dispatcher  Dispatcher
	sideEffects map[model.Kind]bool
	events      messaging.Queue[approval.Event]
	logger      zerolog.Logger
	locks       *locker
}

// New creates an approval service over the registry's layout. Email is the
// only side-effect kind unless WithSideEffectKinds says otherwise.
func New(reg *registry.Service, options ...Option) approval.Service {
	ret := &service{
		registry:    reg,
		layout:      reg.Layout(),
		sideEffects: map[model.Kind]bool{model.KindEmail: true},
		events:      qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
		logger:      zerolog.Nop(),
		locks:       newLocker(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) ListPending(ctx context.Context, filters ...approval.PendingFilter) ([]*model.Item, error) {
	items, err := s.registry.Snapshot(ctx, model.StagePendingApproval)
	if err != nil {
		return nil, err
	}
	return approval.Filter(items, filters...), nil
}

func (s *service) Decide(ctx context.Context, id string, action approval.Action) (decision *approval.Decision, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.decide", tracing.KindInternal)
	span.WithAttributes(map[string]string{"item.id": id, "action": string(action)})
	defer func() { tracing.EndSpan(span, err) }()

	kind, base, err := model.ParseID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", approval.ErrInvalidID, err)
	}
	if !action.IsDecision() {
		return nil, fmt.Errorf("%w: %q", approval.ErrInvalidAction, action)
	}
	id = model.FormatID(kind, base)
	defer s.locks.lock(id)()
	item, err := s.registry.Lookup(ctx, model.StagePendingApproval, id)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %s: %w", id, err)
	}
	decision = s.newDecision(item, action, model.StagePendingApproval)

	switch {
	case action == approval.ActionReject:
		return s.transition(ctx, item, decision, s.layout.Directory(model.StageRejected, kind))
	case s.sideEffects[kind]:
		return s.deliver(ctx, item, decision)
	default:
		return s.transition(ctx, item, decision, s.layout.Directory(model.StageApproved, kind))
	}
}

// deliver runs the side effect and moves the record to done only when the
// dispatcher reports delivery. On failure the record stays pending.
func (s *service) deliver(ctx context.Context, item *model.Item, decision *approval.Decision) (*approval.Decision, error) {
	if s.dispatcher == nil {
		decision.Reason = "no dispatcher configured"
		s.publish(ctx, approval.TopicDecisionFailed, decision)
		return decision, fmt.Errorf("%w: %s", approval.ErrSideEffect, decision.Reason)
	}
	outcome := s.dispatcher.Execute(ctx, item)
	if !outcome.Delivered {
		decision.Reason = outcome.Reason
		s.logger.Warn().Str("id", item.ID).Str("reason", outcome.Reason).Msg("side effect failed, record kept pending")
		s.publish(ctx, approval.TopicDecisionFailed, decision)
		return decision, fmt.Errorf("%w: %s", approval.ErrSideEffect, outcome.Reason)
	}
	decision.ExternalID = outcome.ExternalID
	decision.Reason = outcome.Reason
	ret, err := s.transition(ctx, item, decision, s.layout.Directory(model.StageDone, item.Kind))
	if err != nil {
		s.logger.Error().Str("id", item.ID).Str("externalId", outcome.ExternalID).Err(err).Msg("delivered but not moved to done")
	}
	return ret, err
}

func (s *service) Promote(ctx context.Context, id string) (*approval.Decision, error) {
	return s.advance(ctx, id, approval.ActionPromote, model.StagePendingApproval)
}

func (s *service) Complete(ctx context.Context, id string) (*approval.Decision, error) {
	return s.advance(ctx, id, approval.ActionComplete, model.StageDone)
}

// advance moves a needs action record to target.
func (s *service) advance(ctx context.Context, id string, action approval.Action, target model.Stage) (*approval.Decision, error) {
	kind, base, err := model.ParseID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", approval.ErrInvalidID, err)
	}
	id = model.FormatID(kind, base)
	defer s.locks.lock(id)()
	item, err := s.registry.Lookup(ctx, model.StageNeedsAction, id)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %s: %w", id, err)
	}
	decision := s.newDecision(item, action, model.StageNeedsAction)
	return s.transition(ctx, item, decision, s.layout.Directory(target, kind))
}

// transition moves the item's record to target and publishes the outcome.
func (s *service) transition(ctx context.Context, item *model.Item, decision *approval.Decision, target stage.Directory) (*approval.Decision, error) {
	source := s.layout.Directory(decision.From, item.Kind)
	decision.To = target.Location().Stage
	if err := source.MoveTo(ctx, item.Name, target); err != nil {
		if decision.Reason == "" {
			decision.Reason = err.Error()
		}
		s.publish(ctx, approval.TopicDecisionFailed, decision)
		if errors.Is(err, stage.ErrNotFound) {
			return decision, fmt.Errorf("%s already processed: %w", item.ID, err)
		}
		return decision, fmt.Errorf("failed to move %s to %s: %w", item.ID, decision.To, err)
	}
	decision.Moved = true
	s.logger.Info().Str("id", item.ID).Str("action", string(decision.Action)).
		Str("from", string(decision.From)).Str("to", string(decision.To)).
		Str("externalId", decision.ExternalID).Msg("record transitioned")
	s.publish(ctx, approval.TopicDecisionCreated, decision)
	return decision, nil
}

func (s *service) newDecision(item *model.Item, action approval.Action, from model.Stage) *approval.Decision {
	return &approval.Decision{
		Ref:       idgen.New(),
		ID:        item.ID,
		Kind:      item.Kind,
		Action:    action,
		From:      from,
		DecidedAt: clock.Now(),
	}
}

// publish never blocks the decision; a full queue drops the event.
func (s *service) publish(ctx context.Context, topic string, decision *approval.Decision) {
	snapshot := *decision
	if err := s.events.Publish(ctx, &approval.Event{Topic: topic, Decision: &snapshot}); err != nil {
		s.logger.Warn().Str("id", decision.ID).Str("topic", topic).Err(err).Msg("event dropped")
	}
}

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
