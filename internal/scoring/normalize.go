// Package scoring reduces applicant test records into one canonical score.
//
// Stored records come in several historical shapes: counts directly on the
// applicant, under a nested testResult, under testData, or only as a
// "correct/total" string. Normalize checks them in a fixed priority order and
// never fails, because most applicants have partial data or none at all.
package scoring

import (
	"encoding/json"
	"strconv"
)

// DefaultTotalQuestions is assumed when a record carries no question count.
const DefaultTotalQuestions = 15

// Record is a loosely typed applicant or test record, as decoded from JSON.
type Record map[string]any

// ParseRecord decodes raw JSON into a Record. Malformed input yields an empty record.
func ParseRecord(raw []byte) Record {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		return Record{}
	}
	return rec
}

// NormalizedResult is the canonical score derived from a record.
type NormalizedResult struct {
	CorrectAnswerCount int     `json:"correct_answer_count"`
	TotalQuestions     int     `json:"total_questions"`
	Percentage         float64 `json:"percentage"`
	PerQuestionVerdict []bool  `json:"per_question_verdict"`
}

// Normalize computes the canonical score for rec.
func Normalize(rec Record) NormalizedResult {
	m := map[string]any(rec)
	testResult := nested(m, "testResult")
	testData := nested(m, "testData")

	correct, fracTotal, hasFracTotal := resolveCorrect(m, testResult, testData)
	total := resolveTotal(m, testResult, testData, fracTotal, hasFracTotal)

	res := NormalizedResult{
		TotalQuestions:     total,
		PerQuestionVerdict: verdicts(m, testResult, testData),
	}

	if total > 0 {
		res.CorrectAnswerCount = correct
		res.Percentage = Percentage(correct, total)
	}

	if p, ok := resolvePercentage(m, testResult, testData); ok {
		res.Percentage = clampPercent(p)
	}

	return res
}

// resolveCorrect checks the correct-answer count sources in priority order.
// The first source that yields a value wins.
func resolveCorrect(rec, testResult, testData map[string]any) (correct, fracTotal int, hasFracTotal bool) {
	for _, k := range []string{"correctAnswer", "correctAnswers"} {
		if n, ok := count(testResult[k]); ok {
			return n, 0, false
		}
	}
	if n, ok := count(rec["correctAnswer"]); ok {
		return n, 0, false
	}
	if n, ok := count(testData["correctAnswers"]); ok {
		return n, 0, false
	}
	for _, src := range []map[string]any{testResult, rec, testData} {
		if c, t, ok := fraction(src["score"]); ok {
			return c, t, true
		}
	}
	return 0, 0, false
}

// resolveTotal prefers an actual question list, then an explicit count,
// then the denominator of a "correct/total" score, then the default.
func resolveTotal(rec, testResult, testData map[string]any, fracTotal int, hasFracTotal bool) int {
	if qs := questionList(rec, testResult, testData); len(qs) > 0 {
		return len(qs)
	}
	for _, src := range []map[string]any{testResult, rec, testData} {
		if n, ok := count(src["totalQuestions"]); ok {
			return n
		}
	}
	if hasFracTotal {
		return fracTotal
	}
	return DefaultTotalQuestions
}

// resolvePercentage returns a precomputed percentage when one is stored.
func resolvePercentage(rec, testResult, testData map[string]any) (float64, bool) {
	for _, src := range []map[string]any{testResult, rec, testData} {
		if p, ok := numeric(src["percentage"]); ok {
			return p, true
		}
	}
	return 0, false
}

// questionList finds the first non-empty question array among the known field names.
func questionList(rec, testResult, testData map[string]any) []any {
	if qs, ok := list(rec["questions"]); ok && len(qs) > 0 {
		return qs
	}
	if inner := nested(rec, "questions"); inner != nil {
		if qs, ok := list(inner["questions"]); ok && len(qs) > 0 {
			return qs
		}
	}
	for _, src := range []map[string]any{testData, testResult} {
		if qs, ok := list(src["questions"]); ok && len(qs) > 0 {
			return qs
		}
	}
	return nil
}

// answerSource finds the submitted answers, keyed by id or positional.
func answerSource(rec, testResult, testData map[string]any) any {
	for _, src := range []map[string]any{rec, testData, testResult} {
		v := src["answers"]
		if _, ok := object(v); ok {
			return v
		}
		if _, ok := list(v); ok {
			return v
		}
	}
	return nil
}

func verdicts(rec, testResult, testData map[string]any) []bool {
	qs := questionList(rec, testResult, testData)
	answers := answerSource(rec, testResult, testData)
	if len(qs) == 0 || answers == nil {
		return []bool{}
	}

	out := make([]bool, len(qs))
	for i, raw := range qs {
		q, ok := object(raw)
		if !ok {
			continue
		}
		user := submittedAnswer(answers, q, i)
		correct := firstPresent(q, "correctAnswer", "correctOptionText", "aiAnswer")
		out[i] = Match(user, correct, optionTexts(q["options"]))
	}
	return out
}

// submittedAnswer looks up the answer for question q at position i,
// trying id, _id, questionId, then the position.
func submittedAnswer(answers any, q map[string]any, i int) any {
	if arr, ok := list(answers); ok {
		if i < len(arr) {
			return arr[i]
		}
		return nil
	}

	byID, ok := object(answers)
	if !ok {
		return nil
	}
	for _, field := range []string{"id", "_id", "questionId"} {
		k, ok := key(q[field])
		if !ok {
			continue
		}
		if v, found := byID[k]; found && v != nil {
			return v
		}
	}
	if v, found := byID[strconv.Itoa(i)]; found {
		return v
	}
	return nil
}

func firstPresent(obj map[string]any, fields ...string) any {
	for _, f := range fields {
		if v, ok := obj[f]; ok && !absent(v) {
			return v
		}
	}
	return nil
}
