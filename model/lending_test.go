package model

import "testing"

func TestLendingTransitions(t *testing.T) {
	cases := []struct {
		from, to LendingStatus
		want     bool
	}{
		{LendingPending, LendingAccepted, true},
		{LendingPending, LendingRejected, true},
		{LendingPending, LendingCancelled, true},
		{LendingPending, LendingCompleted, false},
		{LendingAccepted, LendingCompleted, true},
		{LendingAccepted, LendingCancelled, true},
		{LendingAccepted, LendingRejected, false},
		{LendingActive, LendingCompleted, true},
		{LendingActive, LendingCancelled, false},
		{LendingRejected, LendingPending, false},
		{LendingCompleted, LendingAccepted, false},
		{LendingCancelled, LendingPending, false},
		{LendingDisputed, LendingCompleted, true},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []LendingStatus{LendingRejected, LendingCompleted, LendingCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []LendingStatus{LendingPending, LendingAccepted, LendingActive, LendingDisputed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
