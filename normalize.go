package docquiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnusableResponse reports that the model output could not be coerced into
// a non-empty question list.
var ErrUnusableResponse = errors.New("model output is not a usable question list")

var fenceRe = regexp.MustCompile("(?is)```(?:json)?(.*?)```")

var optionLabels = [4]string{"A)", "B)", "C)", "D)"}

// ExtractJSONBlock pulls the JSON array out of raw model output. Models
// sometimes wrap the array in a code fence or surround it with prose, so the
// fenced content wins if present, then the span from the first "[" to the
// last "]". If neither applies the text passes through unchanged for the JSON
// parser to accept or reject.
func ExtractJSONBlock(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

// NormalizeQuestions parses raw model output and repairs each item into a
// playable Question: at most 4 trimmed options each carrying its positional
// label, a correct letter forced into A-D, and a non-empty explanation. Items
// with fewer than 4 options stay short; nothing is padded.
func NormalizeQuestions(raw string) ([]Question, error) {
	block := ExtractJSONBlock(raw)

	var items []map[string]any
	if err := json.Unmarshal([]byte(block), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableResponse, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrUnusableResponse)
	}

	questions := make([]Question, 0, len(items))
	for _, item := range items {
		q := Question{Text: stringField(item, "question")}

		opts, _ := item["options"].([]any)
		if len(opts) > len(optionLabels) {
			opts = opts[:len(optionLabels)]
		}
		for i, o := range opts {
			opt := strings.TrimSpace(coerceString(o))
			if !strings.HasPrefix(strings.ToUpper(opt), optionLabels[i]) {
				opt = optionLabels[i] + " " + opt
			}
			q.Options = append(q.Options, opt)
		}

		correct := strings.ToUpper(stringField(item, "correct"))
		switch correct {
		case "A", "B", "C", "D":
			q.Correct = correct
		default:
			q.Correct = "A"
		}

		q.Explanation = stringField(item, "explanation")
		if q.Explanation == "" {
			q.Explanation = "No explanation provided."
		}

		questions = append(questions, q)
	}

	VerboseLog("Normalized %d questions from %d chars of model output", len(questions), len(raw))
	return questions, nil
}

func stringField(item map[string]any, key string) string {
	return strings.TrimSpace(coerceString(item[key]))
}

// coerceString renders scalar JSON values the way the prompt schema expects
// strings; models occasionally emit numbers for the correct field.
func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}
