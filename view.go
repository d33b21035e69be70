package vaultflow

import (
	"errors"
	"strings"

	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/approval"
	"github.com/viant/vaultflow/service/registry"
	"github.com/viant/vaultflow/service/stage"
)

// PendingView is the reviewer facing projection of a pending item.
type PendingView struct {
	ID        string      `json:"id"`
	Kind      model.Kind  `json:"kind"`
	Stage     model.Stage `json:"stage"`
	Created   string      `json:"created,omitempty"`
	Recipient string      `json:"recipient,omitempty"`
	Platform  string      `json:"platform,omitempty"`
	Subject   string      `json:"subject,omitempty"`
	Body      string      `json:"body"`
}

// NewPendingView projects an item
func NewPendingView(item *model.Item) *PendingView {
	ret := &PendingView{
		ID:      item.ID,
		Kind:    item.Kind,
		Stage:   item.Stage,
		Created: item.Created(),
		Body:    item.Body,
	}
	switch {
	case item.Email != nil:
		ret.Recipient = item.Email.To
		ret.Subject = item.Email.Subject
	case item.Social != nil:
		ret.Platform = strings.Join(item.Social.Platforms, ", ")
	case item.WhatsApp != nil:
		ret.Recipient = item.WhatsApp.From
	}
	return ret
}

// Failure reasons reported by Result
const (
	ReasonNotFound             = "not_found"
	ReasonDirectoryUnavailable = "directory_unavailable"
	ReasonSideEffectFailure    = "side_effect_failure"
	ReasonInvalidAction        = "invalid_action"
	ReasonInvalidID            = "invalid_id"
	ReasonCollision            = "collision"
	ReasonInternal             = "internal"
)

// Result is the outcome of a command.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ExternalID string `json:"externalId,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ReasonOf classifies err into a failure reason.
func ReasonOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, approval.ErrInvalidID), errors.Is(err, model.ErrInvalidID):
		return ReasonInvalidID
	case errors.Is(err, approval.ErrInvalidAction):
		return ReasonInvalidAction
	case errors.Is(err, approval.ErrSideEffect):
		return ReasonSideEffectFailure
	case errors.Is(err, stage.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, stage.ErrCollisionAtTarget):
		return ReasonCollision
	case errors.Is(err, stage.ErrDirectoryUnavailable), errors.Is(err, stage.ErrTargetUnavailable):
		return ReasonDirectoryUnavailable
	default:
		return ReasonInternal
	}
}

func failure(id string, err error) *Result {
	reason := ReasonOf(err)
	message := err.Error()
	if reason == ReasonNotFound {
		message = "item " + id + " not found or already processed"
	}
	return &Result{Message: message, Reason: reason}
}

func success(decision *approval.Decision) *Result {
	var message string
	switch decision.Action {
	case approval.ActionApprove:
		message = "approved " + decision.ID
	case approval.ActionReject:
		message = "rejected " + decision.ID
	case approval.ActionPromote:
		message = "promoted " + decision.ID
	default:
		message = "completed " + decision.ID
	}
	message += ", moved to " + decision.To.Dir()
	if decision.ExternalID != "" {
		message += " (" + decision.ExternalID + ")"
	}
	return &Result{Success: true, Message: message, ExternalID: decision.ExternalID}
}

// Summary aggregates record counts for a dashboard.
type Summary struct {
	Totals map[model.Stage]int `json:"totals"`
	Counts []*registry.Count   `json:"counts"`
}

// Health reports component availability.
type Health struct {
	Healthy    bool   `json:"healthy"`
	Vault      string `json:"vault"`
	EmailRelay string `json:"emailRelay"`
	Audit      string `json:"audit,omitempty"`
}

// DraftRequest describes a record to place in the pending approval stage.
type DraftRequest struct {
	Kind model.Kind
	// Name is the file base name; generated when empty.
	Name     string
	Metadata *model.Metadata
	Body     string
}
