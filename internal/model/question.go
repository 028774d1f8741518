package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Question is a single aptitude test item. Loaded once and shared read-only.
type Question struct {
	ID            int         `json:"id"`
	Prompt        string      `json:"prompt"`
	Options       []string    `json:"options"`
	CorrectAnswer AnswerValue `json:"correct_answer"`
	Category      string      `json:"category"`
}

// QuestionForCandidate is a question without the correct answer, sent to candidates.
type QuestionForCandidate struct {
	ID       int      `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

// ForCandidate strips the answer key.
func (q Question) ForCandidate() QuestionForCandidate {
	return QuestionForCandidate{
		ID:       q.ID,
		Prompt:   q.Prompt,
		Options:  q.Options,
		Category: q.Category,
	}
}

var ErrInvalidAnswerValue = errors.New("answer must be an option index or option text")

// AnswerValue is either an option index or an option's text.
// The zero value means "no answer".
type AnswerValue struct {
	index *int
	text  *string
}

// IndexAnswer builds an AnswerValue referring to an option by position.
func IndexAnswer(i int) AnswerValue {
	return AnswerValue{index: &i}
}

// TextAnswer builds an AnswerValue carrying option text.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{text: &s}
}

// IsZero reports whether no answer is set.
func (v AnswerValue) IsZero() bool {
	return v.index == nil && v.text == nil
}

// Index returns the option index, if this value is one.
func (v AnswerValue) Index() (int, bool) {
	if v.index == nil {
		return 0, false
	}
	return *v.index, true
}

// Text returns the option text, if this value is one.
func (v AnswerValue) Text() (string, bool) {
	if v.text == nil {
		return "", false
	}
	return *v.text, true
}

// Any returns the value as int, string, or nil, the shape used by loosely typed records.
func (v AnswerValue) Any() any {
	switch {
	case v.index != nil:
		return *v.index
	case v.text != nil:
		return *v.text
	default:
		return nil
	}
}

func (v AnswerValue) String() string {
	switch {
	case v.index != nil:
		return strconv.Itoa(*v.index)
	case v.text != nil:
		return *v.text
	default:
		return ""
	}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = AnswerValue{}
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case string:
		*v = TextAnswer(t)
	case float64:
		if t != math.Trunc(t) || t < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidAnswerValue, t)
		}
		*v = IndexAnswer(int(t))
	default:
		return ErrInvalidAnswerValue
	}
	return nil
}

// AnswerRecord maps question id to the candidate's selection.
type AnswerRecord map[int]AnswerValue

// Clone returns an independent copy.
func (r AnswerRecord) Clone() AnswerRecord {
	out := make(AnswerRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
