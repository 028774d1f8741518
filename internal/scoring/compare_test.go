package scoring

import (
	"testing"

	"github.com/stemsi/recruit-backend/internal/model"
)

func TestMatch(t *testing.T) {
	options := []string{"Berlin", "Paris", "Rome"}

	tests := []struct {
		name    string
		user    any
		correct any
		want    bool
	}{
		{name: "case and trailing space", user: "paris ", correct: "Paris", want: true},
		{name: "different text", user: "Rome", correct: "Paris", want: false},
		{name: "index equal", user: 1, correct: float64(1), want: true},
		{name: "index different", user: 2, correct: 1, want: false},
		{name: "index vs text", user: 1, correct: "PARIS", want: true},
		{name: "text vs index", user: " rome", correct: float64(2), want: true},
		{name: "index out of range", user: 9, correct: "Paris", want: false},
		{name: "fractional index", user: 1.5, correct: "Paris", want: false},
		{name: "missing user", user: nil, correct: "Paris", want: false},
		{name: "blank user", user: "  ", correct: "Paris", want: false},
		{name: "missing correct", user: "Paris", correct: nil, want: false},
		{name: "unsupported type", user: true, correct: "Paris", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.user, tc.correct, options); got != tc.want {
				t.Errorf("Match(%v, %v) = %v, want %v", tc.user, tc.correct, got, tc.want)
			}
		})
	}
}

func TestOptionTexts_ObjectOptions(t *testing.T) {
	got := optionTexts([]any{map[string]any{"text": "A"}, map[string]any{"label": "B"}, "C", float64(4)})
	want := []string{"A", "B", "C", "4"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTally(t *testing.T) {
	questions := []model.Question{
		{ID: 1, Options: []string{"a", "b"}, CorrectAnswer: model.IndexAnswer(1)},
		{ID: 2, Options: []string{"a", "b"}, CorrectAnswer: model.TextAnswer("A")},
		{ID: 3, Options: []string{"a", "b"}, CorrectAnswer: model.IndexAnswer(0)},
	}
	answers := model.AnswerRecord{
		1: model.TextAnswer("B"),
		2: model.IndexAnswer(0),
	}

	correct, verdicts := Tally(questions, answers)

	if correct != 2 {
		t.Errorf("expected 2 correct, got %d", correct)
	}
	if len(verdicts) != 3 || !verdicts[0] || !verdicts[1] || verdicts[2] {
		t.Errorf("unexpected verdicts %v", verdicts)
	}
	if p := Percentage(correct, len(questions)); p < 66.66 || p > 66.67 {
		t.Errorf("expected ~66.67%%, got %v", p)
	}
	if p := Percentage(3, 0); p != 0 {
		t.Errorf("expected 0 for empty total, got %v", p)
	}
}
