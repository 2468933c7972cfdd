package docquiz

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// GenLogger writes a transcript of one generation run: the request
// parameters, the prompt sent to the model, and the raw response. One file
// per run under log/.
type GenLogger struct {
	file  *os.File
	mu    sync.Mutex
	runID string
}

// NewRunID returns a short random identifier for a generation run.
func NewRunID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 12)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// NewGenLogger creates a logger for a single generation run.
func NewGenLogger(runID string, req GenerationRequest) (*GenLogger, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join("log", fmt.Sprintf("%s.log", runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &GenLogger{
		file:  file,
		runID: runID,
	}

	logger.Logf("=== Quiz Generation Log ===\n")
	logger.Logf("Run ID: %s\n", runID)
	logger.Logf("Number of Questions: %d\n", req.NumQuestions)
	logger.Logf("Difficulty: %s\n", req.Difficulty)
	logger.Logf("Document Length: %d characters\n", len(req.DocumentText))
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp.
func (gl *GenLogger) Logf(format string, args ...interface{}) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(gl.file, "[%s] %s", timestamp, message)
	gl.file.Sync()
}

// LogPrompt logs the prompt sent to the model.
func (gl *GenLogger) LogPrompt(prompt string) {
	gl.Logf("=== PROMPT ===\n")
	gl.Logf("%s\n", prompt)
	gl.Logf("==============\n\n")
}

// LogResponse logs the raw model response before normalization.
func (gl *GenLogger) LogResponse(response string) {
	gl.Logf("=== RAW RESPONSE ===\n")
	gl.Logf("%s\n", response)
	gl.Logf("====================\n\n")
}

// Close finalizes and closes the log file.
func (gl *GenLogger) Close() error {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if gl.file != nil {
		fmt.Fprintf(gl.file, "[%s] === Generation Complete: %s ===\n",
			time.Now().Format("15:04:05.000"), time.Now().Format(time.RFC3339))
		return gl.file.Close()
	}
	return nil
}
