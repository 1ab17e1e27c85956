package domain

import (
	"errors"
	"testing"
)

func TestStateCanTransitionTo(t *testing.T) {
	states := []State{StateCreated, StateConfirmed, StateExecuted, StateSold}
	// 每个状态只有一个合法后继，SOLD 没有
	allowedNext := map[State]State{
		StateCreated:   StateConfirmed,
		StateConfirmed: StateExecuted,
		StateExecuted:  StateSold,
	}

	for _, from := range states {
		for _, to := range states {
			want := allowedNext[from] == to
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		raw     string
		want    State
		wantErr bool
	}{
		{"CREATED", StateCreated, false},
		{"CONFIRMED", StateConfirmed, false},
		{"EXECUTED", StateExecuted, false},
		{"SOLD", StateSold, false},
		{"created", "", true},
		{"PENDING", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseState(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("ParseState(%q) error = %v, want ErrInvalidArgument", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseState(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseState(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}
