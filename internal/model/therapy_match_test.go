package model

import "testing"

func TestMatchStatusTransitions(t *testing.T) {
	tests := []struct {
		from    MatchStatus
		to      MatchStatus
		allowed bool
	}{
		{MatchActive, MatchConsultationBooked, true},
		{MatchActive, MatchDeclined, true},
		{MatchActive, MatchConsultationCompleted, false},
		{MatchActive, MatchSelectedForTherapy, false},

		{MatchConsultationBooked, MatchConsultationCompleted, true},
		{MatchConsultationBooked, MatchDeclined, false},
		{MatchConsultationBooked, MatchActive, false},

		{MatchConsultationCompleted, MatchSelectedForTherapy, true},
		{MatchConsultationCompleted, MatchDeclined, true},
		{MatchConsultationCompleted, MatchConsultationBooked, false},

		{MatchSelectedForTherapy, MatchDeclined, false},
		{MatchSelectedForTherapy, MatchActive, false},
		{MatchDeclined, MatchActive, false},
		{MatchDeclined, MatchSelectedForTherapy, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestMatchStatusTerminal(t *testing.T) {
	terminal := map[MatchStatus]bool{
		MatchActive:                false,
		MatchConsultationBooked:    false,
		MatchConsultationCompleted: false,
		MatchSelectedForTherapy:    true,
		MatchDeclined:              true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestParseMatchStatus(t *testing.T) {
	if st, err := ParseMatchStatus("consultation_booked"); err != nil || st != MatchConsultationBooked {
		t.Errorf("got (%v, %v)", st, err)
	}
	if _, err := ParseMatchStatus("archived"); err == nil {
		t.Error("unknown status must not parse")
	}
	if _, err := ParseMatchStatus(""); err == nil {
		t.Error("empty status must not parse")
	}
}
