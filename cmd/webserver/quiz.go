package main

import (
	"log"
	"net/http"
	"strings"

	"docquiz"
)

// quizRef is the session-side handle on a quiz: the stored quiz id plus the
// player's progress. The questions themselves live in the database, so the
// cookie stays small no matter how long the quiz is.
type quizRef struct {
	QuizID          string
	Index           int
	Score           int
	LastExplanation string
}

// handleQuizStart renders the setup form and, on POST, runs the
// prompt → generate → normalize pipeline, stores the question set, and seeds
// the session handle. A new quiz unconditionally replaces whatever quiz was
// in the session.
func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	latest, err := s.db.LatestDocument(userID)
	if err != nil {
		log.Printf("Failed to get latest document: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if latest == nil || strings.TrimSpace(latest.ExtractedText) == "" {
		s.flash(w, r, "warning", "Please upload a document first.")
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, r, "quiz_start", map[string]interface{}{"Document": latest})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	req := docquiz.GenerationRequest{
		DocumentText: latest.ExtractedText,
		NumQuestions: docquiz.ParseNumQuestions(r.FormValue("num_questions")),
		Difficulty:   docquiz.ParseDifficulty(r.FormValue("difficulty")),
	}
	prompt := docquiz.BuildPrompt(req)

	runID := docquiz.NewRunID()
	genlog, err := docquiz.NewGenLogger(runID, req)
	if err != nil {
		log.Printf("Failed to create generation log for run %s: %v", runID, err)
		// generation proceeds without a transcript
	} else {
		defer genlog.Close()
		genlog.LogPrompt(prompt)
	}

	raw, err := s.generator.Generate(r.Context(), prompt)
	if err != nil {
		log.Printf("Generation failed for run %s: %v", runID, err)
		s.flash(w, r, "danger", "Quiz generation failed. Please try again.")
		http.Redirect(w, r, "/quiz/start", http.StatusSeeOther)
		return
	}
	if genlog != nil {
		genlog.LogResponse(raw)
	}

	questions, err := docquiz.NormalizeQuestions(raw)
	if err != nil {
		log.Printf("Normalization failed for run %s: %v", runID, err)
		s.flash(w, r, "danger", "Quiz generation failed to parse JSON. Please try again.")
		http.Redirect(w, r, "/quiz/start", http.StatusSeeOther)
		return
	}

	if err := s.db.SaveQuiz(runID, userID, questions); err != nil {
		log.Printf("Failed to store quiz %s: %v", runID, err)
		http.Error(w, "Failed to store quiz", http.StatusInternalServerError)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	session.Values["quiz"] = quizRef{QuizID: runID}
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/quiz/q", http.StatusSeeOther)
}

// quizState reassembles the state machine from the session handle and the
// stored question set.
func (s *Server) quizState(r *http.Request, userID int64) (docquiz.QuizState, quizRef, bool, error) {
	session, _ := s.store.Get(r, sessionName)
	ref, ok := session.Values["quiz"].(quizRef)
	if !ok {
		return docquiz.QuizState{}, quizRef{}, false, nil
	}

	questions, err := s.db.QuizQuestions(ref.QuizID, userID)
	if err != nil {
		return docquiz.QuizState{}, quizRef{}, false, err
	}
	if len(questions) == 0 {
		return docquiz.QuizState{}, quizRef{}, false, nil
	}

	state := docquiz.QuizState{
		Questions:       questions,
		Index:           ref.Index,
		Score:           ref.Score,
		LastExplanation: ref.LastExplanation,
	}
	return state, ref, true, nil
}

func (s *Server) handleShowQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	state, _, ok, err := s.quizState(r, userID)
	if err != nil {
		log.Printf("Failed to load quiz: %v", err)
		http.Error(w, "Failed to load quiz", http.StatusInternalServerError)
		return
	}
	if !ok {
		s.flash(w, r, "warning", "Please generate a quiz first.")
		http.Redirect(w, r, "/quiz/start", http.StatusSeeOther)
		return
	}

	question, ok := state.Current()
	if !ok {
		http.Redirect(w, r, "/quiz/result", http.StatusSeeOther)
		return
	}

	s.render(w, r, "quiz_question", map[string]interface{}{
		"QNum":     state.Index + 1,
		"Total":    len(state.Questions),
		"Question": question,
	})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, ref, ok, err := s.quizState(r, userID)
	if err != nil {
		log.Printf("Failed to load quiz: %v", err)
		http.Error(w, "Failed to load quiz", http.StatusInternalServerError)
		return
	}
	if !ok {
		s.flash(w, r, "warning", "Please generate a quiz first.")
		http.Redirect(w, r, "/quiz/start", http.StatusSeeOther)
		return
	}
	if state.Completed() {
		http.Redirect(w, r, "/quiz/result", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	done := state.SubmitAnswer(r.FormValue("answer"))

	ref.Index = state.Index
	ref.Score = state.Score
	ref.LastExplanation = state.LastExplanation
	session, _ := s.store.Get(r, sessionName)
	session.Values["quiz"] = ref
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	if done {
		http.Redirect(w, r, "/quiz/result", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/quiz/q", http.StatusSeeOther)
}

// handleShowResult persists the finished quiz and renders the score page.
// Revisiting the page records another row; a new quiz start resets the state.
func (s *Server) handleShowResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	state, _, ok, err := s.quizState(r, userID)
	if err != nil {
		log.Printf("Failed to load quiz: %v", err)
		http.Error(w, "Failed to load quiz", http.StatusInternalServerError)
		return
	}
	if !ok {
		s.flash(w, r, "warning", "Please generate a quiz first.")
		http.Redirect(w, r, "/quiz/start", http.StatusSeeOther)
		return
	}

	total := len(state.Questions)
	if total > 0 {
		if err := s.db.SaveQuizResult(userID, state.Score, total); err != nil {
			log.Printf("Failed to save quiz result: %v", err)
			http.Error(w, "Failed to save quiz result", http.StatusInternalServerError)
			return
		}
	}

	percent := state.Percent()
	s.render(w, r, "quiz_result", map[string]interface{}{
		"Score":    state.Score,
		"Total":    total,
		"Percent":  percent,
		"Feedback": docquiz.Feedback(percent),
	})
}
