package docquiz

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultNumQuestions = 5
	MinQuestions        = 1
	MaxQuestions        = 50
	DefaultDifficulty   = "medium"
)

// ParseNumQuestions turns a form value into a usable question count. Anything
// that does not parse as an integer becomes the default; integers are clamped
// to [MinQuestions, MaxQuestions].
func ParseNumQuestions(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		n = DefaultNumQuestions
	}
	return ClampNumQuestions(n)
}

// ClampNumQuestions clamps a question count to [MinQuestions, MaxQuestions].
func ClampNumQuestions(n int) int {
	if n < MinQuestions {
		return MinQuestions
	}
	if n > MaxQuestions {
		return MaxQuestions
	}
	return n
}

// ParseDifficulty lowercases the form value and falls back to the default for
// anything other than easy, medium or hard.
func ParseDifficulty(s string) string {
	d := strings.ToLower(strings.TrimSpace(s))
	switch d {
	case "easy", "medium", "hard":
		return d
	}
	return DefaultDifficulty
}

// BuildPrompt produces the instruction string sent to the model. The prompt
// demands a bare JSON array, but the response still goes through
// NormalizeQuestions because models do not reliably comply.
func BuildPrompt(req GenerationRequest) string {
	var sb strings.Builder

	sb.WriteString("You are an expert MCQ quiz generator.\n\n")
	sb.WriteString(fmt.Sprintf("Generate %d multiple-choice questions strictly based on the DOCUMENT TEXT below.\n", req.NumQuestions))
	sb.WriteString(fmt.Sprintf("Difficulty: %s\n\n", req.Difficulty))

	sb.WriteString("Rules:\n")
	sb.WriteString("- Each question must have exactly 4 options labeled \"A)\", \"B)\", \"C)\", \"D)\".\n")
	sb.WriteString("- Provide which option letter is correct via the \"correct\" field (e.g., \"B\").\n")
	sb.WriteString("- Provide a one-sentence explanation for the correct answer.\n")
	sb.WriteString("- Output ONLY a valid JSON array (no extra text, no markdown fence).\n\n")

	sb.WriteString("JSON schema example:\n")
	sb.WriteString(`[
  {
    "question": "....",
    "options": ["A) ...", "B) ...", "C) ...", "D) ..."],
    "correct": "B",
    "explanation": "one sentence explanation"
  }
]`)
	sb.WriteString("\n\nDOCUMENT TEXT:\n")
	sb.WriteString(req.DocumentText)
	sb.WriteString("\n")

	return sb.String()
}
