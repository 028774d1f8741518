// Package questionset loads the fixed question set every candidate sits.
package questionset

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/stemsi/recruit-backend/internal/model"
)

//go:embed default.json
var defaultSet []byte

var (
	ErrEmpty       = errors.New("question set is empty")
	ErrInvalidItem = errors.New("invalid question")
	ErrDuplicateID = errors.New("duplicate question id")
)

// Set is an immutable, validated list of questions.
type Set struct {
	questions []model.Question
}

// Default returns the embedded set.
func Default() (*Set, error) {
	return Parse(defaultSet)
}

// Load reads the set at path, or the embedded set when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question set: %w", err)
	}
	set, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes and validates a JSON array of questions.
func Parse(raw []byte) (*Set, error) {
	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode question set: %w", err)
	}
	if err := Validate(questions); err != nil {
		return nil, err
	}
	return &Set{questions: questions}, nil
}

// Validate checks ids are positive and unique, every item has at least two
// options, and the correct answer resolves to one of them.
func Validate(questions []model.Question) error {
	if len(questions) == 0 {
		return ErrEmpty
	}
	seen := make(map[int]bool, len(questions))
	for i, q := range questions {
		if q.ID <= 0 {
			return fmt.Errorf("%w at position %d: id must be positive", ErrInvalidItem, i)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, q.ID)
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("%w %d: prompt is empty", ErrInvalidItem, q.ID)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w %d: needs at least 2 options", ErrInvalidItem, q.ID)
		}
		if !resolvable(q) {
			return fmt.Errorf("%w %d: correct answer %s is not an option", ErrInvalidItem, q.ID, q.CorrectAnswer)
		}
	}
	return nil
}

func resolvable(q model.Question) bool {
	if idx, ok := q.CorrectAnswer.Index(); ok {
		return idx >= 0 && idx < len(q.Options)
	}
	if text, ok := q.CorrectAnswer.Text(); ok {
		for _, opt := range q.Options {
			if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(text)) {
				return true
			}
		}
	}
	return false
}

// Questions returns a copy of the set in display order.
func (s *Set) Questions() []model.Question {
	return append([]model.Question(nil), s.questions...)
}

// Len returns the number of questions.
func (s *Set) Len() int { return len(s.questions) }
