package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"docquiz"
)

// stubGenerator returns a canned model response and records the prompt.
type stubGenerator struct {
	raw        string
	err        error
	lastPrompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.lastPrompt = prompt
	return g.raw, g.err
}

const threeQuestionResponse = "Here is your quiz:\n```json\n" + `[
  {"question": "Q1?", "options": ["A) a", "B) b", "C) c", "D) d"], "correct": "A", "explanation": "e1"},
  {"question": "Q2?", "options": ["A) a", "B) b", "C) c", "D) d"], "correct": "B", "explanation": "e2"},
  {"question": "Q3?", "options": ["A) a", "B) b", "C) c", "D) d"], "correct": "C", "explanation": "e3"}
]` + "\n```\nGood luck!"

func newTestServer(t *testing.T, gen docquiz.GenerationClient) (*Server, *httptest.Server, *http.Client) {
	t.Helper()

	db, err := docquiz.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.CloseDB() })

	if err := db.CreateTables(); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}

	server := &Server{
		db:        db,
		store:     newSessionStore("test-secret", false),
		templates: loadTemplates(),
		generator: gen,
	}

	ts := httptest.NewServer(server.routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	return server, ts, client
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) (string, *http.Response) {
	t.Helper()
	resp, err := client.PostForm(url, form)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body), resp
}

func get(t *testing.T, client *http.Client, url string) (string, *http.Response) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body), resp
}

func registerAndLogin(t *testing.T, ts *httptest.Server, client *http.Client) {
	t.Helper()
	creds := url.Values{"email": {"user@example.com"}, "password": {"hunter2"}}
	postForm(t, client, ts.URL+"/register", creds)
	body, resp := postForm(t, client, ts.URL+"/login", creds)
	if resp.Request.URL.Path != "/upload" {
		t.Fatalf("login landed on %s, body: %s", resp.Request.URL.Path, body)
	}
}

func uploadText(t *testing.T, ts *httptest.Server, client *http.Client, text string) {
	t.Helper()
	_, resp := postForm(t, client, ts.URL+"/upload", url.Values{"text": {text}})
	if resp.Request.URL.Path != "/quiz/start" {
		t.Fatalf("upload landed on %s", resp.Request.URL.Path)
	}
}

func TestQuizFlowEndToEnd(t *testing.T) {
	gen := &stubGenerator{raw: threeQuestionResponse}
	server, ts, client := newTestServer(t, gen)

	registerAndLogin(t, ts, client)
	uploadText(t, ts, client, "The sky is blue.")

	// generate a 3 question easy quiz
	body, resp := postForm(t, client, ts.URL+"/quiz/start", url.Values{
		"num_questions": {"3"},
		"difficulty":    {"easy"},
	})
	if resp.Request.URL.Path != "/quiz/q" {
		t.Fatalf("quiz start landed on %s, body: %s", resp.Request.URL.Path, body)
	}
	for _, want := range []string{"Generate 3", "Difficulty: easy", "The sky is blue."} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(body, "Question 1 of 3") || !strings.Contains(body, "Q1?") {
		t.Errorf("first question page wrong: %s", body)
	}

	// answer two correctly, one wrong
	for i, answer := range []string{"A", "B", "D"} {
		body, resp = postForm(t, client, ts.URL+"/quiz/answer", url.Values{"answer": {answer}})
		if i < 2 && resp.Request.URL.Path != "/quiz/q" {
			t.Fatalf("answer %d landed on %s", i, resp.Request.URL.Path)
		}
	}
	if resp.Request.URL.Path != "/quiz/result" {
		t.Fatalf("final answer landed on %s", resp.Request.URL.Path)
	}
	if !strings.Contains(body, "2 / 3") || !strings.Contains(body, "Good, keep improving") {
		t.Errorf("result page wrong: %s", body)
	}

	// the result is persisted for the user
	user, err := server.db.GetUserByEmail("user@example.com")
	if err != nil || user == nil {
		t.Fatalf("user lookup failed: %v", err)
	}
	results, err := server.db.ResultsForUser(user.ID)
	if err != nil {
		t.Fatalf("results lookup failed: %v", err)
	}
	if len(results) != 1 || results[0].Score != 2 || results[0].Total != 3 {
		t.Errorf("persisted results = %+v, want one 2/3 row", results)
	}

	// revisiting the result page records another row (known behavior)
	get(t, client, ts.URL+"/quiz/result")
	results, _ = server.db.ResultsForUser(user.ID)
	if len(results) != 2 {
		t.Errorf("got %d rows after revisit, want 2", len(results))
	}

	// the history page shows the rows
	body, _ = get(t, client, ts.URL+"/history")
	if !strings.Contains(body, "2 / 3") {
		t.Errorf("history page missing result: %s", body)
	}
}

func TestPerfectScore(t *testing.T) {
	gen := &stubGenerator{raw: threeQuestionResponse}
	_, ts, client := newTestServer(t, gen)

	registerAndLogin(t, ts, client)
	uploadText(t, ts, client, "doc text")
	postForm(t, client, ts.URL+"/quiz/start", url.Values{"num_questions": {"3"}})

	var body string
	for _, answer := range []string{"a", " b ", "C"} { // grading trims and uppercases
		body, _ = postForm(t, client, ts.URL+"/quiz/answer", url.Values{"answer": {answer}})
	}
	if !strings.Contains(body, "3 / 3") || !strings.Contains(body, "Excellent!") {
		t.Errorf("result page wrong: %s", body)
	}
}

func TestQuizStartWithoutDocument(t *testing.T) {
	_, ts, client := newTestServer(t, &stubGenerator{})

	registerAndLogin(t, ts, client)

	body, resp := get(t, client, ts.URL+"/quiz/start")
	if resp.Request.URL.Path != "/upload" {
		t.Fatalf("landed on %s", resp.Request.URL.Path)
	}
	if !strings.Contains(body, "Please upload a document first.") {
		t.Errorf("missing warning flash: %s", body)
	}
}

func TestQuizStartParseFailure(t *testing.T) {
	gen := &stubGenerator{raw: "I am sorry, I cannot help with that."}
	_, ts, client := newTestServer(t, gen)

	registerAndLogin(t, ts, client)
	uploadText(t, ts, client, "doc text")

	body, resp := postForm(t, client, ts.URL+"/quiz/start", url.Values{"num_questions": {"3"}})
	if resp.Request.URL.Path != "/quiz/start" {
		t.Fatalf("landed on %s", resp.Request.URL.Path)
	}
	if !strings.Contains(body, "Quiz generation failed to parse JSON. Please try again.") {
		t.Errorf("missing danger flash: %s", body)
	}
}

func TestAnswerWithoutQuiz(t *testing.T) {
	_, ts, client := newTestServer(t, &stubGenerator{})

	registerAndLogin(t, ts, client)
	uploadText(t, ts, client, "doc text")

	body, resp := postForm(t, client, ts.URL+"/quiz/answer", url.Values{"answer": {"A"}})
	if resp.Request.URL.Path != "/quiz/start" {
		t.Fatalf("landed on %s", resp.Request.URL.Path)
	}
	if !strings.Contains(body, "Please generate a quiz first.") {
		t.Errorf("missing warning flash: %s", body)
	}
}

func TestAuthRequired(t *testing.T) {
	_, ts, client := newTestServer(t, &stubGenerator{})

	body, resp := get(t, client, ts.URL+"/quiz/q")
	if resp.Request.URL.Path != "/login" {
		t.Fatalf("landed on %s", resp.Request.URL.Path)
	}
	if !strings.Contains(body, "Please log in first.") {
		t.Errorf("missing warning flash: %s", body)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	_, ts, client := newTestServer(t, &stubGenerator{})

	creds := url.Values{"email": {"user@example.com"}, "password": {"hunter2"}}
	postForm(t, client, ts.URL+"/register", creds)
	body, resp := postForm(t, client, ts.URL+"/register", creds)
	if resp.Request.URL.Path != "/register" {
		t.Fatalf("landed on %s", resp.Request.URL.Path)
	}
	if !strings.Contains(body, "Email already exists!") {
		t.Errorf("missing duplicate warning: %s", body)
	}
}

func TestSessionCookieOverPlainHTTP(t *testing.T) {
	_, ts, client := newTestServer(t, &stubGenerator{})

	creds := url.Values{"email": {"user@example.com"}, "password": {"hunter2"}}
	postForm(t, client, ts.URL+"/register", creds)

	// a plain-HTTP client must receive a cookie it will actually keep
	noRedirect := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := noRedirect.PostForm(ts.URL+"/login", creds)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	resp.Body.Close()

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionName {
			session = c
		}
	}
	if session == nil {
		t.Fatalf("login response set no %s cookie", sessionName)
	}
	if session.Secure {
		t.Error("session cookie marked Secure; plain-HTTP clients will drop it")
	}
	if !session.HttpOnly {
		t.Error("session cookie not HttpOnly")
	}

	// the jar-backed client stays logged in across requests
	body, resp2 := postForm(t, client, ts.URL+"/login", creds)
	if resp2.Request.URL.Path != "/upload" {
		t.Fatalf("login landed on %s, body: %s", resp2.Request.URL.Path, body)
	}
	tsURL, _ := url.Parse(ts.URL)
	if len(client.Jar.Cookies(tsURL)) == 0 {
		t.Fatal("cookie jar empty after login")
	}
	body, _ = get(t, client, ts.URL+"/history")
	if strings.Contains(body, "Please log in first.") {
		t.Errorf("session not retained across requests: %s", body)
	}
}

func TestLargeQuizPlayable(t *testing.T) {
	// a quiz at the question-count cap must survive the round trip through
	// the session layer
	const n = 50
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"question": "What is fact number %d about the topic under discussion?", "options": ["A) the first plausible alternative", "B) the second plausible alternative", "C) the third plausible alternative", "D) the fourth plausible alternative"], "correct": "A", "explanation": "Explanation for question %d."}`, i+1, i+1)
	}
	sb.WriteString("]")

	gen := &stubGenerator{raw: sb.String()}
	_, ts, client := newTestServer(t, gen)

	registerAndLogin(t, ts, client)
	uploadText(t, ts, client, "a long document")

	body, resp := postForm(t, client, ts.URL+"/quiz/start", url.Values{"num_questions": {"50"}})
	if resp.Request.URL.Path != "/quiz/q" {
		t.Fatalf("quiz start landed on %s, body: %s", resp.Request.URL.Path, body)
	}
	if !strings.Contains(body, "Question 1 of 50") {
		t.Errorf("first question page wrong: %s", body)
	}

	for i := 0; i < n; i++ {
		body, resp = postForm(t, client, ts.URL+"/quiz/answer", url.Values{"answer": {"A"}})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("answer %d: status %d", i+1, resp.StatusCode)
		}
	}
	if resp.Request.URL.Path != "/quiz/result" {
		t.Fatalf("final answer landed on %s, body: %s", resp.Request.URL.Path, body)
	}
	if !strings.Contains(body, "50 / 50") || !strings.Contains(body, "Excellent!") {
		t.Errorf("result page wrong: %s", body)
	}
}

func TestInvalidLogin(t *testing.T) {
	_, ts, client := newTestServer(t, &stubGenerator{})

	postForm(t, client, ts.URL+"/register", url.Values{"email": {"user@example.com"}, "password": {"hunter2"}})
	body, resp := postForm(t, client, ts.URL+"/login", url.Values{"email": {"user@example.com"}, "password": {"wrong"}})
	if resp.Request.URL.Path != "/login" {
		t.Fatalf("landed on %s", resp.Request.URL.Path)
	}
	if !strings.Contains(body, "Invalid login!") {
		t.Errorf("missing login error: %s", body)
	}
}
