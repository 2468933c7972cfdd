package docquiz

import "strings"

// QuizState is one user's in-progress quiz as carried in their session.
// Questions is fixed at start; Index and Score only move forward through
// SubmitAnswer. The quiz is complete once Index reaches len(Questions).
type QuizState struct {
	Questions       []Question `json:"questions"`
	Index           int        `json:"index"`
	Score           int        `json:"score"`
	LastExplanation string     `json:"last_explanation"`
}

// NewQuizState starts a quiz over the given questions.
func NewQuizState(questions []Question) QuizState {
	return QuizState{Questions: questions}
}

// Completed reports whether every question has been answered.
func (qs *QuizState) Completed() bool {
	return qs.Index >= len(qs.Questions)
}

// Current returns the question at the cursor, or false when the quiz is
// complete.
func (qs *QuizState) Current() (Question, bool) {
	if qs.Completed() {
		return Question{}, false
	}
	return qs.Questions[qs.Index], true
}

// SubmitAnswer grades one answer letter and advances the cursor. The letter
// is trimmed and uppercased before comparison. Submitting after completion
// changes nothing. Returns whether the quiz is now complete.
func (qs *QuizState) SubmitAnswer(answer string) bool {
	if qs.Completed() {
		return true
	}

	q := qs.Questions[qs.Index]
	selected := strings.ToUpper(strings.TrimSpace(answer))
	correct := strings.ToUpper(strings.TrimSpace(q.Correct))
	if selected == correct {
		qs.Score++
	}
	qs.LastExplanation = q.Explanation
	qs.Index++

	return qs.Completed()
}

// Percent is the score as a percentage of the question count, 0 for an empty
// quiz.
func (qs *QuizState) Percent() float64 {
	if len(qs.Questions) == 0 {
		return 0
	}
	return float64(qs.Score) / float64(len(qs.Questions)) * 100
}

// Feedback maps a completion percentage to its feedback tier.
func Feedback(percent float64) string {
	switch {
	case percent < 40:
		return "Needs Practice"
	case percent < 70:
		return "Good, keep improving"
	default:
		return "Excellent!"
	}
}
