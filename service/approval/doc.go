// Package approval defines the human-in-the-loop decision layer: records
// waiting in the pending approval stage are approved or rejected, and every
// transition is published as an Event for downstream consumers such as the
// audit log.
package approval
