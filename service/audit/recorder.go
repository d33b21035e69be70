package audit

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/viant/vaultflow/service/approval"
	"github.com/viant/vaultflow/service/messaging"
)

// Recorder drains approval events into a Store.
type Recorder struct {
	store  *Store
	events messaging.Queue[approval.Event]
	logger zerolog.Logger
}

// NewRecorder creates a recorder
func NewRecorder(store *Store, events messaging.Queue[approval.Event], logger zerolog.Logger) *Recorder {
	return &Recorder{store: store, events: events, logger: logger}
}

// Run records events until ctx is cancelled.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		msg, err := r.events.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		entry := FromEvent(msg.T())
		if entry == nil {
			_ = msg.Ack()
			continue
		}
		if err := r.store.Record(ctx, entry); err != nil {
			r.logger.Warn().Str("id", entry.ItemID).Err(err).Msg("failed to audit decision")
			_ = msg.Nack(err)
			continue
		}
		_ = msg.Ack()
	}
}

// FromEvent converts an approval event into an audit entry.
func FromEvent(event *approval.Event) *Entry {
	if event == nil || event.Decision == nil {
		return nil
	}
	decision := event.Decision
	outcome := OutcomeApplied
	if event.Topic == approval.TopicDecisionFailed {
		outcome = OutcomeFailed
	}
	return &Entry{
		Ref:        decision.Ref,
		ItemID:     decision.ID,
		Kind:       string(decision.Kind),
		Action:     string(decision.Action),
		FromStage:  string(decision.From),
		ToStage:    string(decision.To),
		Outcome:    outcome,
		ExternalID: decision.ExternalID,
		Reason:     decision.Reason,
		DecidedAt:  decision.DecidedAt,
	}
}
