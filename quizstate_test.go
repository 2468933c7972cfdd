package docquiz

import "testing"

func testQuestions(n int) []Question {
	letters := []string{"A", "B", "C", "D"}
	questions := make([]Question, n)
	for i := range questions {
		questions[i] = Question{
			Text:        "question",
			Options:     []string{"A) a", "B) b", "C) c", "D) d"},
			Correct:     letters[i%len(letters)],
			Explanation: "because",
		}
	}
	return questions
}

func TestQuizStateFullRun(t *testing.T) {
	state := NewQuizState(testQuestions(4))
	if state.Index != 0 || state.Score != 0 {
		t.Fatalf("fresh state: index=%d score=%d", state.Index, state.Score)
	}

	// answer the first two correctly, the last two wrong
	answers := []string{"A", "B", "A", "A"}
	for i, answer := range answers {
		if state.Completed() {
			t.Fatalf("completed early at question %d", i)
		}
		done := state.SubmitAnswer(answer)
		wantDone := i == len(answers)-1
		if done != wantDone {
			t.Errorf("after answer %d: done=%v, want %v", i, done, wantDone)
		}
	}

	if state.Score != 2 {
		t.Errorf("score = %d, want 2", state.Score)
	}
	if !state.Completed() {
		t.Error("quiz should be completed")
	}
	if state.LastExplanation != "because" {
		t.Errorf("last explanation = %q", state.LastExplanation)
	}
}

func TestQuizStateAnswerNormalization(t *testing.T) {
	state := NewQuizState(testQuestions(2))
	state.SubmitAnswer(" a ")
	state.SubmitAnswer("b")
	if state.Score != 2 {
		t.Errorf("score = %d, want 2: answers should be trimmed and uppercased", state.Score)
	}
}

func TestQuizStateSubmitAfterCompletion(t *testing.T) {
	state := NewQuizState(testQuestions(1))
	state.SubmitAnswer("A")

	index, score := state.Index, state.Score
	if done := state.SubmitAnswer("A"); !done {
		t.Error("submit after completion should report done")
	}
	if state.Index != index || state.Score != score {
		t.Errorf("submit after completion mutated state: index %d->%d score %d->%d",
			index, state.Index, score, state.Score)
	}
}

func TestQuizStateCurrent(t *testing.T) {
	state := NewQuizState(testQuestions(1))
	q, ok := state.Current()
	if !ok || q.Correct != "A" {
		t.Fatalf("Current() = %+v, %v", q, ok)
	}
	state.SubmitAnswer("D")
	if _, ok := state.Current(); ok {
		t.Error("Current() should report no question after completion")
	}
}

func TestPercentAndFeedback(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		total   int
		percent float64
		tier    string
	}{
		{name: "empty quiz", score: 0, total: 0, percent: 0, tier: "Needs Practice"},
		{name: "zero of ten", score: 0, total: 10, percent: 0, tier: "Needs Practice"},
		{name: "just below forty", score: 3, total: 10, percent: 30, tier: "Needs Practice"},
		{name: "forty exactly", score: 4, total: 10, percent: 40, tier: "Good, keep improving"},
		{name: "middle", score: 5, total: 10, percent: 50, tier: "Good, keep improving"},
		{name: "seventy exactly", score: 7, total: 10, percent: 70, tier: "Excellent!"},
		{name: "eighty", score: 8, total: 10, percent: 80, tier: "Excellent!"},
		{name: "perfect", score: 10, total: 10, percent: 100, tier: "Excellent!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := QuizState{Questions: testQuestions(tt.total), Score: tt.score, Index: tt.total}
			if got := state.Percent(); got != tt.percent {
				t.Errorf("Percent() = %v, want %v", got, tt.percent)
			}
			if got := Feedback(state.Percent()); got != tt.tier {
				t.Errorf("Feedback() = %q, want %q", got, tt.tier)
			}
		})
	}
}
