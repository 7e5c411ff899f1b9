package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{DealStatusPending, DealStatusFunded, true},
		{DealStatusFunded, DealStatusInProgress, true},
		{DealStatusInProgress, DealStatusCompleted, true},

		// Dispute paths
		{DealStatusInProgress, DealStatusDisputed, true},
		{DealStatusDisputed, DealStatusInProgress, true},
		{DealStatusDisputed, DealStatusCompleted, true},
		{DealStatusDisputed, DealStatusCancelled, true},

		// Review paths
		{DealStatusPending, DealStatusPendingReview, true},
		{DealStatusPendingReview, DealStatusPending, true},
		{DealStatusPendingReview, DealStatusCancelled, true},

		// Cancellation paths
		{DealStatusPending, DealStatusCancelled, true},
		{DealStatusFunded, DealStatusCancelled, true},
		{DealStatusInProgress, DealStatusCancelled, true},

		// Invalid transitions
		{DealStatusPending, DealStatusInProgress, false},
		{DealStatusPending, DealStatusCompleted, false},
		{DealStatusPending, DealStatusDisputed, false},
		{DealStatusFunded, DealStatusCompleted, false},
		{DealStatusFunded, DealStatusDisputed, false},
		{DealStatusCompleted, DealStatusCancelled, false},
		{DealStatusCompleted, DealStatusDisputed, false},
		{DealStatusCancelled, DealStatusPending, false},
		{DealStatusPendingReview, DealStatusFunded, false},
		{"nonexistent", DealStatusFunded, false},
		{DealStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllStatusesHaveTransitionEntry(t *testing.T) {
	allStatuses := []string{
		DealStatusPending, DealStatusPendingReview, DealStatusFunded,
		DealStatusInProgress, DealStatusDisputed,
		DealStatusCompleted, DealStatusCancelled,
	}

	for _, status := range allStatuses {
		if _, ok := ValidDealTransitions[status]; !ok {
			t.Errorf("status %q missing from ValidDealTransitions map", status)
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{DealStatusCompleted, DealStatusCancelled}
	for _, status := range terminal {
		if !IsTerminalStatus(status) {
			t.Errorf("status %q should be terminal", status)
		}
		transitions := ValidDealTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}

func TestIsValidResolution(t *testing.T) {
	for _, action := range []string{ResolutionComplete, ResolutionRefund, ResolutionCancel} {
		if !IsValidResolution(action) {
			t.Errorf("expected %q to be a valid resolution", action)
		}
	}
	if IsValidResolution("ESCALATE") {
		t.Error("expected ESCALATE to be invalid")
	}
}
