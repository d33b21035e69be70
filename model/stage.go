package model

import (
	"fmt"
	"strings"
)

// Stage identifies one point of an item's approval lifecycle.
type Stage string

const (
	StageNeedsAction     Stage = "needs_action"
	StagePendingApproval Stage = "pending"
	StageApproved        Stage = "approved"
	StageRejected        Stage = "rejected"
	StageDone            Stage = "done"
)

// Stages lists every stage in lifecycle order.
var Stages = []Stage{StageNeedsAction, StagePendingApproval, StageApproved, StageRejected, StageDone}

var stageDirs = map[Stage]string{
	StageNeedsAction:     "Needs_Action",
	StagePendingApproval: "Pending_Approval",
	StageApproved:        "Approved",
	StageRejected:        "Rejected",
	StageDone:            "Done",
}

// Dir returns the vault directory name of the stage.
func (s Stage) Dir() string {
	return stageDirs[s]
}

// HasKindDirs reports whether records of the stage are grouped in per-kind
// sub-directories. Approved and Rejected hold records directly.
func (s Stage) HasKindDirs() bool {
	switch s {
	case StageApproved, StageRejected:
		return false
	}
	return true
}

// IsValid reports whether s is a known stage.
func (s Stage) IsValid() bool {
	_, ok := stageDirs[s]
	return ok
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage accepts either the stage name or its directory name.
func ParseStage(value string) (Stage, error) {
	candidate := strings.ToLower(strings.TrimSpace(value))
	for stage, dir := range stageDirs {
		if candidate == string(stage) || candidate == strings.ToLower(dir) {
			return stage, nil
		}
	}
	if candidate == "pending_approval" {
		return StagePendingApproval, nil
	}
	return "", fmt.Errorf("unknown stage: %q", value)
}
