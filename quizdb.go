package docquiz

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the application's sqlite database.
type DB struct {
	db *sql.DB
}

// OpenDB opens a new database connection.
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection.
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist.
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			filename TEXT,
			extracted_text TEXT,
			summary TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			quiz_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			text TEXT NOT NULL,
			options TEXT NOT NULL,
			correct TEXT NOT NULL,
			explanation TEXT,
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_result (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateUser inserts a new account and returns its id.
func (db *DB) CreateUser(email, passwordHash string) (int64, error) {
	res, err := db.db.Exec(
		"INSERT INTO users (email, password_hash) VALUES (?, ?)",
		email, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user id: %w", err)
	}
	return id, nil
}

// GetUserByEmail retrieves an account by email, or nil when none exists.
func (db *DB) GetUserByEmail(email string) (*User, error) {
	var user User
	err := db.db.QueryRow(
		"SELECT id, email, password_hash FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SaveDocument stores an uploaded document and fills in its id.
func (db *DB) SaveDocument(doc *Document) error {
	res, err := db.db.Exec(
		"INSERT INTO documents (user_id, filename, extracted_text, summary) VALUES (?, ?, ?, ?)",
		doc.UserID, doc.Filename, doc.ExtractedText, doc.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	doc.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get document id: %w", err)
	}
	return nil
}

// LatestDocument retrieves the user's most recent upload, or nil when they
// have none.
func (db *DB) LatestDocument(userID int64) (*Document, error) {
	var doc Document
	err := db.db.QueryRow(
		"SELECT id, user_id, filename, extracted_text, summary FROM documents WHERE user_id = ? ORDER BY id DESC LIMIT 1",
		userID,
	).Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.ExtractedText, &doc.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest document: %w", err)
	}
	return &doc, nil
}

// SaveQuiz stores a generated question set under the given quiz id. The
// session only carries the id and the player's cursor; the questions live
// here.
func (db *DB) SaveQuiz(quizID string, userID int64, questions []Question) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO quizzes (id, user_id) VALUES (?, ?)", quizID, userID); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	for i, q := range questions {
		optionsJSON, err := OptionsToJSON(q.Options)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO questions (quiz_id, question_num, text, options, correct, explanation) VALUES (?, ?, ?, ?, ?, ?)",
			quizID, i+1, q.Text, optionsJSON, q.Correct, q.Explanation,
		); err != nil {
			return fmt.Errorf("failed to store question %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// QuizQuestions retrieves the stored questions for a quiz in play order.
// Returns nil when the quiz does not exist or belongs to a different user.
func (db *DB) QuizQuestions(quizID string, userID int64) ([]Question, error) {
	var owner int64
	err := db.db.QueryRow("SELECT user_id FROM quizzes WHERE id = ?", quizID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if owner != userID {
		return nil, nil
	}

	rows, err := db.db.Query(
		"SELECT text, options, correct, explanation FROM questions WHERE quiz_id = ? ORDER BY question_num",
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var question Question
		var optionsJSON string
		err := rows.Scan(&question.Text, &optionsJSON, &question.Correct, &question.Explanation)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		question.Options, err = JSONToOptions(optionsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to parse options: %w", err)
		}
		questions = append(questions, question)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// OptionsToJSON converts an options slice to its stored JSON form.
func OptionsToJSON(options []string) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// JSONToOptions converts the stored JSON form back to an options slice.
func JSONToOptions(optionsJSON string) ([]string, error) {
	var options []string
	err := json.Unmarshal([]byte(optionsJSON), &options)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}

// SaveQuizResult records a finished quiz. The timestamp is assigned by the
// database.
func (db *DB) SaveQuizResult(userID int64, score, total int) error {
	_, err := db.db.Exec(
		"INSERT INTO quiz_result (user_id, score, total) VALUES (?, ?, ?)",
		userID, score, total,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz result: %w", err)
	}
	return nil
}

// ResultsForUser retrieves the user's quiz results, newest first.
func (db *DB) ResultsForUser(userID int64) ([]QuizResult, error) {
	rows, err := db.db.Query(
		"SELECT id, user_id, score, total, timestamp FROM quiz_result WHERE user_id = ? ORDER BY timestamp DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	defer rows.Close()

	var results []QuizResult
	for rows.Next() {
		var result QuizResult
		err := rows.Scan(&result.ID, &result.UserID, &result.Score, &result.Total, &result.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz results: %w", err)
	}

	return results, nil
}
