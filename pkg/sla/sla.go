// Package sla computes service-level deadlines for pipeline stages and
// derives the ok/near/breached status a board renders per card.
//
// All functions are pure: callers pass the reference time explicitly, which
// keeps the engine deterministic and testable.
package sla

import (
	"fmt"
	"time"
)

// Status is the derived health of a card's SLA deadline.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNear     Status = "near"
	StatusBreached Status = "breached"
)

// NearThreshold is the remaining time at or under which a deadline counts as
// "near" instead of "ok".
const NearThreshold = 12 * time.Hour

// BreachedLabel is the countdown label shown once a deadline has passed.
const BreachedLabel = "Estourado"

// Result pairs a status with its human countdown label ("2d 4h", "10h",
// "Estourado"). Label is empty when the card has no deadline.
type Result struct {
	Status Status
	Label  string
}

// Deadline returns the absolute SLA deadline for a stage entered at the
// reference time.
func Deadline(slaHours int, reference time.Time) time.Time {
	return reference.Add(time.Duration(slaHours) * time.Hour)
}

// Compute derives the SLA status and countdown label for a deadline at the
// given instant. A nil deadline yields ok with an empty label.
//
// Status only ever worsens as now advances toward and past a fixed deadline:
// ok, then near once NearThreshold or less remains, then breached.
func Compute(deadline *time.Time, now time.Time) Result {
	if deadline == nil {
		return Result{Status: StatusOK}
	}

	diff := deadline.Sub(now)
	if diff <= 0 {
		return Result{Status: StatusBreached, Label: BreachedLabel}
	}

	totalHours := diff.Hours()
	days := int(totalHours / 24)
	hours := int(totalHours) % 24

	var label string
	if days > 0 {
		label = fmt.Sprintf("%dd %dh", days, hours)
	} else {
		label = fmt.Sprintf("%dh", hours)
	}

	if diff <= NearThreshold {
		return Result{Status: StatusNear, Label: label}
	}
	return Result{Status: StatusOK, Label: label}
}

// severity orders statuses for aggregation: breached > near > ok.
func severity(s Status) int {
	switch s {
	case StatusBreached:
		return 2
	case StatusNear:
		return 1
	default:
		return 0
	}
}

// Worst returns the most severe of the given statuses. An empty list is ok.
// Columns use this to pick their health indicator: one breached card turns
// the whole column red regardless of how the rest are doing.
func Worst(statuses ...Status) Status {
	worst := StatusOK
	for _, s := range statuses {
		if severity(s) > severity(worst) {
			worst = s
		}
	}
	return worst
}
