package docquiz

import "time"

// Question is a single multiple choice question as played in a quiz. Options
// carry their "A)".."D)" labels in positional order and Correct is the
// matching letter.
type Question struct {
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation"`
}

// User is a registered account.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Document is an uploaded document with its extracted plain text.
type Document struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	Filename      string `json:"filename"`
	ExtractedText string `json:"extracted_text"`
	Summary       string `json:"summary"`
}

// QuizResult is one finished quiz. The timestamp is assigned by the database
// at insertion.
type QuizResult struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// GenerationRequest describes one quiz generation run over a document.
type GenerationRequest struct {
	DocumentText string `json:"-"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty"`
}
