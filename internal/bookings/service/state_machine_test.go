package service

import (
	"testing"

	"fleetbook/pkg/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusPending, model.StatusPending, false},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusConfirmed, false},
		{model.StatusConfirmed, model.StatusPending, false},
		{model.StatusCancelled, model.StatusPending, false},
		{model.StatusCancelled, model.StatusConfirmed, false},
		{model.StatusCancelled, model.StatusCancelled, false},
		{"unknown", model.StatusConfirmed, false},
		{model.StatusPending, "unknown", false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidTargetStatus(t *testing.T) {
	valid := []string{model.StatusConfirmed, model.StatusCancelled}
	for _, s := range valid {
		if !model.ValidTargetStatus(s) {
			t.Errorf("ValidTargetStatus(%q) = false, want true", s)
		}
	}
	invalid := []string{"", model.StatusPending, "done", "Confirmed"}
	for _, s := range invalid {
		if model.ValidTargetStatus(s) {
			t.Errorf("ValidTargetStatus(%q) = true, want false", s)
		}
	}
}
