package approval

import (
	"fmt"
	"strings"
	"time"

	"github.com/viant/vaultflow/model"
)

// Action is a transition requested by an operator.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	// ActionPromote moves a triaged record into the approval queue.
	ActionPromote Action = "promote"
	// ActionComplete marks a record handled without approval.
	ActionComplete Action = "complete"
)

// IsDecision reports whether a is approve or reject.
func (a Action) IsDecision() bool {
	return a == ActionApprove || a == ActionReject
}

// ParseAction parses an approve/reject decision, case-insensitively.
func ParseAction(value string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(value)))
	if !action.IsDecision() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, value)
	}
	return action, nil
}

// Event topics
const (
	TopicDecisionCreated = "decision.created"
	TopicDecisionFailed  = "decision.failed"
)

// Event is published for every transition attempt that reached a record.
type Event struct {
	Topic    string    `json:"topic"`
	Decision *Decision `json:"decision"`
}

// Decision is the result of one transition.
type Decision struct {
	Ref        string      `json:"ref"`
	ID         string      `json:"id"`
	Kind       model.Kind  `json:"kind"`
	Action     Action      `json:"action"`
	From       model.Stage `json:"from"`
	To         model.Stage `json:"to,omitempty"`
	ExternalID string      `json:"externalId,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Moved      bool        `json:"moved"`
	DecidedAt  time.Time   `json:"decidedAt"`
}
