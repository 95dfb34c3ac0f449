package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

func TestDeadline(t *testing.T) {
	got := Deadline(72, base)
	assert.Equal(t, base.Add(72*time.Hour), got)
}

func TestComputeNoDeadline(t *testing.T) {
	res := Compute(nil, base)
	assert.Equal(t, StatusOK, res.Status)
	assert.Empty(t, res.Label)
}

func TestComputeStatuses(t *testing.T) {
	deadline := base.Add(100 * time.Hour)

	tests := []struct {
		name       string
		now        time.Time
		wantStatus Status
		wantLabel  string
	}{
		{"far out", deadline.Add(-100 * time.Hour), StatusOK, "4d 4h"},
		{"under a day", deadline.Add(-20 * time.Hour), StatusOK, "20h"},
		{"exactly near threshold", deadline.Add(-12 * time.Hour), StatusNear, "12h"},
		{"ten hours left", deadline.Add(-10 * time.Hour), StatusNear, "10h"},
		{"exactly at deadline", deadline, StatusBreached, BreachedLabel},
		{"one hour past", deadline.Add(1 * time.Hour), StatusBreached, BreachedLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(&deadline, tt.now)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantLabel, res.Label)
		})
	}
}

// Status must only ever worsen as time advances toward a fixed deadline.
func TestComputeMonotonic(t *testing.T) {
	deadline := base

	prev := StatusOK
	for offset := -13 * time.Hour; offset <= time.Hour; offset += 15 * time.Minute {
		res := Compute(&deadline, deadline.Add(offset))
		require.GreaterOrEqual(t, severity(res.Status), severity(prev),
			"status regressed from %s to %s at offset %s", prev, res.Status, offset)
		prev = res.Status
	}
	assert.Equal(t, StatusBreached, prev)
}

func TestWorst(t *testing.T) {
	assert.Equal(t, StatusOK, Worst())
	assert.Equal(t, StatusOK, Worst(StatusOK, StatusOK))
	assert.Equal(t, StatusNear, Worst(StatusOK, StatusNear, StatusOK))
	assert.Equal(t, StatusBreached, Worst(StatusNear, StatusBreached, StatusOK))
	assert.Equal(t, StatusBreached, Worst(StatusBreached))
}
