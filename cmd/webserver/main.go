package main

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"

	"docquiz"

	"github.com/gorilla/sessions"
)

const sessionName = "docquiz-session"

// Server holds the application's shared state.
type Server struct {
	db        *docquiz.DB
	store     *sessions.CookieStore
	templates map[string]*template.Template
	generator docquiz.GenerationClient
}

// Flash is a one-shot user message with a bootstrap-style category.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(quizRef{})
	gob.Register(Flash{})
}

func main() {
	docquiz.SetVerbose(os.Getenv("QUIZ_VERBOSE") != "")

	// Get credentials from environment
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("SESSION_SECRET environment variable is required")
	}

	dbPath := os.Getenv("QUIZ_DB")
	if dbPath == "" {
		dbPath = "./docquiz.db"
	}

	// Initialize database
	db, err := docquiz.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	server := &Server{
		db:        db,
		store:     newSessionStore(secret, os.Getenv("SECURE_COOKIES") != ""),
		templates: loadTemplates(),
		generator: docquiz.NewOpenAIClient(apiKey),
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, server.routes()))
}

// newSessionStore builds the cookie store with options that work over plain
// HTTP. The library default is Secure, which browsers drop without TLS; set
// SECURE_COOKIES when serving behind HTTPS.
func newSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func loadTemplates() map[string]*template.Template {
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"printf": fmt.Sprintf,
	}

	templates := make(map[string]*template.Template)

	// Load each template with base.html
	templateFiles := []struct {
		name string
		file string
	}{
		{"register", "templates/register.html"},
		{"login", "templates/login.html"},
		{"upload", "templates/upload.html"},
		{"quiz_start", "templates/quiz_start.html"},
		{"quiz_question", "templates/quiz_question.html"},
		{"quiz_result", "templates/quiz_result.html"},
		{"history", "templates/history.html"},
	}

	for _, tmpl := range templateFiles {
		templates[tmpl.name] = template.Must(template.New(tmpl.name).Funcs(funcMap).ParseFiles("templates/base.html", tmpl.file))
	}

	return templates
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/quiz/start", s.handleQuizStart)
	mux.HandleFunc("/quiz/q", s.handleShowQuestion)
	mux.HandleFunc("/quiz/answer", s.handleSubmitAnswer)
	mux.HandleFunc("/quiz/result", s.handleShowResult)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.currentUserID(r); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/upload", http.StatusSeeOther)
}

// currentUserID reads the authenticated user from the session.
func (s *Server) currentUserID(r *http.Request) (int64, bool) {
	session, _ := s.store.Get(r, sessionName)
	userID, ok := session.Values["user_id"].(int64)
	return userID, ok
}

// requireUser redirects to the login page when no user is signed in.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := s.currentUserID(r)
	if !ok {
		s.flash(w, r, "warning", "Please log in first.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return 0, false
	}
	return userID, true
}

// flash queues a one-shot message for the next rendered page.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	session, _ := s.store.Get(r, sessionName)
	session.AddFlash(Flash{Category: category, Message: message})
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
}

// render executes a page template inside base.html, draining queued flashes.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	session, _ := s.store.Get(r, sessionName)
	if flashes := session.Flashes(); len(flashes) > 0 {
		if err := session.Save(r, w); err != nil {
			log.Printf("Session save error: %v", err)
		}
		data["Flashes"] = flashes
	}
	_, loggedIn := session.Values["user_id"].(int64)
	data["LoggedIn"] = loggedIn

	err := s.templates[name].ExecuteTemplate(w, "base.html", data)
	if err != nil {
		log.Printf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
