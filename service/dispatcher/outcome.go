package dispatcher

import "strings"

// Outcome reports the result of one side-effect attempt.
type Outcome struct {
	Delivered  bool               `json:"delivered"`
	ExternalID string             `json:"externalId,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Platforms  []*PlatformOutcome `json:"platforms,omitempty"`
}

// PlatformOutcome is the per-target result of a multi-target dispatch.
type PlatformOutcome struct {
	Platform   string `json:"platform"`
	Delivered  bool   `json:"delivered"`
	ExternalID string `json:"externalId,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func failed(reason string) *Outcome {
	return &Outcome{Reason: reason}
}

// merge folds per-target results: delivered when any target succeeded.
func merge(results []*PlatformOutcome) *Outcome {
	ret := &Outcome{Platforms: results}
	var ids, reasons []string
	for _, result := range results {
		if result.Delivered {
			ret.Delivered = true
			ids = append(ids, result.Platform+":"+result.ExternalID)
			continue
		}
		reasons = append(reasons, result.Platform+": "+result.Reason)
	}
	ret.ExternalID = strings.Join(ids, ",")
	if !ret.Delivered {
		ret.Reason = strings.Join(reasons, "; ")
	}
	return ret
}
