package questionset_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stemsi/recruit-backend/internal/questionset"
	"github.com/stemsi/recruit-backend/internal/scoring"
)

func TestDefault(t *testing.T) {
	set, err := questionset.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if set.Len() != scoring.DefaultTotalQuestions {
		t.Errorf("expected %d questions, got %d", scoring.DefaultTotalQuestions, set.Len())
	}
	for _, q := range set.Questions() {
		if q.CorrectAnswer.IsZero() {
			t.Errorf("question %d has no correct answer", q.ID)
		}
	}
}

func TestQuestionsReturnsCopy(t *testing.T) {
	set, err := questionset.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	qs := set.Questions()
	qs[0].Prompt = "changed"
	if set.Questions()[0].Prompt == "changed" {
		t.Error("mutating the returned slice changed the set")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", `[]`, questionset.ErrEmpty},
		{"duplicate", `[{"id":1,"prompt":"a","options":["x","y"],"correct_answer":0},{"id":1,"prompt":"b","options":["x","y"],"correct_answer":0}]`, questionset.ErrDuplicateID},
		{"one option", `[{"id":1,"prompt":"a","options":["x"],"correct_answer":0}]`, questionset.ErrInvalidItem},
		{"index out of range", `[{"id":1,"prompt":"a","options":["x","y"],"correct_answer":2}]`, questionset.ErrInvalidItem},
		{"text not an option", `[{"id":1,"prompt":"a","options":["x","y"],"correct_answer":"z"}]`, questionset.ErrInvalidItem},
		{"missing answer", `[{"id":1,"prompt":"a","options":["x","y"]}]`, questionset.ErrInvalidItem},
		{"zero id", `[{"id":0,"prompt":"a","options":["x","y"],"correct_answer":0}]`, questionset.ErrInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := questionset.Parse([]byte(tt.raw))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_TextAnswer(t *testing.T) {
	set, err := questionset.Parse([]byte(`[{"id":7,"prompt":"Capital?","options":["Rome","Paris"],"correct_answer":" paris"}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("expected 1 question, got %d", set.Len())
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses embedded set", func(t *testing.T) {
		set, err := questionset.Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if set.Len() != scoring.DefaultTotalQuestions {
			t.Errorf("expected embedded set, got %d questions", set.Len())
		}
	})

	t.Run("file override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "set.json")
		raw := `[{"id":1,"prompt":"a","options":["x","y"],"correct_answer":1},{"id":2,"prompt":"b","options":["x","y"],"correct_answer":"x"}]`
		if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
			t.Fatal(err)
		}
		set, err := questionset.Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if set.Len() != 2 {
			t.Errorf("expected 2 questions, got %d", set.Len())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := questionset.Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
