package main

import (
	"io"
	"log"
	"net/http"
	"strings"

	"docquiz"
)

const maxUploadBytes = 10 << 20

// handleUpload stores pasted or uploaded plain text as the user's latest
// document. Extraction from richer formats happens outside this app; the quiz
// flow only reads extracted text.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		latest, err := s.db.LatestDocument(userID)
		if err != nil {
			log.Printf("Failed to get latest document: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		s.render(w, r, "upload", map[string]interface{}{"Latest": latest})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// multipart when a file is attached, urlencoded when text is pasted
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
	}

	text := r.FormValue("text")
	filename := "pasted-text.txt"
	if file, header, err := r.FormFile("document"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Failed to read upload", http.StatusBadRequest)
			return
		}
		text = string(data)
		filename = header.Filename
	}

	if strings.TrimSpace(text) == "" {
		s.flash(w, r, "warning", "Paste some text or choose a .txt file first.")
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}

	doc := &docquiz.Document{
		UserID:        userID,
		Filename:      filename,
		ExtractedText: text,
	}
	if err := s.db.SaveDocument(doc); err != nil {
		log.Printf("Failed to save document: %v", err)
		http.Error(w, "Failed to save document", http.StatusInternalServerError)
		return
	}

	s.flash(w, r, "success", "Document saved. You can generate a quiz now.")
	http.Redirect(w, r, "/quiz/start", http.StatusSeeOther)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	results, err := s.db.ResultsForUser(userID)
	if err != nil {
		log.Printf("Failed to get quiz results: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "history", map[string]interface{}{"Results": results})
}
