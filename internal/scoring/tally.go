package scoring

import "github.com/stemsi/recruit-backend/internal/model"

// Tally grades answers against a fixed question set.
// Verdicts follow question order; unanswered questions are incorrect.
func Tally(questions []model.Question, answers model.AnswerRecord) (correct int, verdicts []bool) {
	verdicts = make([]bool, len(questions))
	for i, q := range questions {
		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		if Match(ans.Any(), q.CorrectAnswer.Any(), q.Options) {
			verdicts[i] = true
			correct++
		}
	}
	return correct, verdicts
}

// Percentage returns correct/total as a percentage, 0 when total is not positive.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return clampPercent(float64(correct) / float64(total) * 100)
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
