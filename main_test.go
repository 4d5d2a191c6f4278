package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/typing"
)

type testClient struct {
	t       *testing.T
	r       *gin.Engine
	cookies []*http.Cookie
}

func (tc *testClient) do(method, path, contentType string, body string) *httptest.ResponseRecorder {
	tc.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("DNT", "1")
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	tc.r.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		tc.cookies = append(tc.cookies, c)
	}
	return w
}

func (tc *testClient) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return tc.do(http.MethodPost, path, "application/x-www-form-urlencoded", form.Encode())
}

func newTestSite(t *testing.T, submitter contact.Submitter) (*testClient, *site) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if err := openDB(":memory:"); err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	adminToken = "test-admin-token"
	hashingSalt = "test-salt"

	cfg := Config{
		Templates:     "templates/*",
		AdminUsername: "admin",
		AdminPassword: "secret",
		SessionTTL:    time.Hour,
		MaxSessions:   100,
	}
	s := &site{
		cfg: cfg,
		projects: []portfolio.Project{
			{ID: "a", Title: "Alpha Project", Tags: []string{"Go"}, Featured: true},
			{ID: "b", Title: "Beta Project"},
		},
		sessions: newSessionStore(submitter, cfg.SessionTTL, cfg.MaxSessions),
		clock:    typing.RealClock,
	}

	r := gin.New()
	setupRoutes(r, s)
	setupAdminRoutes(r, cfg)
	return &testClient{t: t, r: r}, s
}

func countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestIndexRendersSections(t *testing.T) {
	client, _ := newTestSite(t, contact.Simulated{})

	w := client.do(http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`id="home"`, "Alpha Project", "Featured", `id="contact"`, "Send Message"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if len(client.cookies) != 0 {
		t.Fatalf("reading the page created a session")
	}

	client.postForm("/contact/field", url.Values{"name": {"A"}})
	if len(client.cookies) == 0 || client.cookies[0].Name != sessionCookie {
		t.Fatalf("session cookie not set on first form edit")
	}
}

func TestContactEmptySubmission(t *testing.T) {
	client, _ := newTestSite(t, contact.Simulated{})

	w := client.postForm("/contact", url.Values{"name": {""}, "email": {""}, "message": {""}})
	body := w.Body.String()
	for _, want := range []string{contact.MsgNameRequired, contact.MsgEmailRequired, contact.MsgMessageRequired} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %q", want)
		}
	}
	if n := countRows(t, "SELECT COUNT(*) FROM messages"); n != 0 {
		t.Fatalf("invalid form stored %d messages", n)
	}
}

func TestContactSubmitStoresAndResets(t *testing.T) {
	client, _ := newTestSite(t, contact.SubmitterFunc(storeMessage))

	w := client.postForm("/contact", url.Values{
		"name":    {"<b>Ann</b>"},
		"email":   {"ann@example.com"},
		"message": {"Use <div> tags, a<b then x"},
	})
	if !strings.Contains(w.Body.String(), "Message Sent Successfully!") {
		t.Fatalf("expected success fragment, got:\n%s", w.Body.String())
	}
	// stored exactly as validated; escaping happens on display
	if n := countRows(t, "SELECT COUNT(*) FROM messages WHERE name = ? AND message = ?",
		"<b>Ann</b>", "Use <div> tags, a<b then x"); n != 1 {
		t.Fatalf("expected the message stored verbatim, got %d rows", n)
	}

	w = client.do(http.MethodGet, "/contact-form", "", "")
	if !strings.Contains(w.Body.String(), "Send Another Message") {
		t.Fatalf("submitted form should keep showing the success card")
	}

	w = client.postForm("/contact/reset", nil)
	body := w.Body.String()
	if !strings.Contains(body, `class="contact-form"`) || strings.Contains(body, "Ann") {
		t.Fatalf("reset should show an empty form, got:\n%s", body)
	}
}

func TestContactFailureKeepsValues(t *testing.T) {
	failing := contact.SubmitterFunc(func(context.Context, contact.Values) error {
		return errors.New("smtp down")
	})
	client, _ := newTestSite(t, failing)

	w := client.postForm("/contact", url.Values{
		"name":    {"Ann"},
		"email":   {"ann@example.com"},
		"message": {"hello"},
	})
	body := w.Body.String()
	if !strings.Contains(body, portfolio.ContactFailure) {
		t.Fatalf("missing failure notice:\n%s", body)
	}
	if !strings.Contains(body, `value="Ann"`) {
		t.Fatalf("entered values lost after failure:\n%s", body)
	}
}

func TestContactFieldEditClearsOnlyThatError(t *testing.T) {
	client, _ := newTestSite(t, contact.Simulated{})
	client.postForm("/contact", url.Values{})

	w := client.postForm("/contact/field", url.Values{"name": {"A"}})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	body := client.do(http.MethodGet, "/contact-form", "", "").Body.String()
	if strings.Contains(body, contact.MsgNameRequired) {
		t.Fatalf("name error not cleared")
	}
	if !strings.Contains(body, contact.MsgEmailRequired) {
		t.Fatalf("email error cleared too early")
	}

	if w := client.postForm("/contact/field", url.Values{"phone": {"1"}}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status = %d", w.Code)
	}
}

func TestVisibilityBeaconRecordsFirstView(t *testing.T) {
	client, _ := newTestSite(t, contact.Simulated{})
	client.do(http.MethodGet, "/", "", "")

	for _, ratio := range []string{"0.05", "0.5", "0", "0.8"} {
		w := client.do(http.MethodPost, "/beacon/visibility", "application/json",
			`{"section":"projects","ratio":`+ratio+`}`)
		if w.Code != http.StatusNoContent {
			t.Fatalf("ratio %s: status = %d", ratio, w.Code)
		}
	}
	if n := countRows(t, "SELECT COUNT(*) FROM section_views WHERE section = 'projects'"); n != 1 {
		t.Fatalf("expected one recorded view, got %d", n)
	}
	if n := countRows(t, "SELECT COUNT(*) FROM section_views WHERE section = 'contact'"); n != 0 {
		t.Fatalf("unseen section recorded")
	}

	body := client.do(http.MethodGet, "/", "", "").Body.String()
	if !strings.Contains(body, `id="projects" class="is-visible"`) {
		t.Fatalf("visible section not marked on render")
	}

	for _, bad := range []string{`{"section":"nope","ratio":0.5}`, `{"section":"home","ratio":2}`, `{"section":"home"}`} {
		if w := client.do(http.MethodPost, "/beacon/visibility", "application/json", bad); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", bad, w.Code)
		}
	}
}

func TestHeroStreamTypesTitleThenSubtitle(t *testing.T) {
	client, _ := newTestSite(t, contact.Simulated{})

	w := client.do(http.MethodGet, "/hero/stream", "", "")
	body := w.Body.String()
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(body, "event:hero") {
		t.Fatalf("no hero events:\n%s", body)
	}
	if !strings.Contains(body, `"subtitleDone":true`) {
		t.Fatalf("stream ended before the subtitle completed:\n%s", body)
	}
	if strings.Contains(body, `"titleDone":false,"subtitle":"I`) {
		t.Fatalf("subtitle started before the title completed")
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	client, _ := newTestSite(t, contact.Simulated{})

	w := client.do(http.MethodGet, "/admin/dashboard", "", "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/login" {
		t.Fatalf("unauthenticated dashboard: %d %q", w.Code, w.Header().Get("Location"))
	}

	w = client.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status = %d", w.Code)
	}

	w = client.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"secret"}})
	if w.Code != http.StatusFound {
		t.Fatalf("login: status = %d", w.Code)
	}
	w = client.do(http.MethodGet, "/admin/dashboard", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Dashboard") {
		t.Fatalf("dashboard after login: %d", w.Code)
	}
}

func TestSessionSweepDisposesIdleSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if err := openDB(":memory:"); err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Now()
	st := newSessionStore(contact.Simulated{}, time.Minute, 10)
	st.now = func() time.Time { return now }

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	sess := st.get(c)

	now = now.Add(2 * time.Minute)
	if n := st.sweep(); n != 1 {
		t.Fatalf("sweep expired %d sessions, want 1", n)
	}
	if out, _ := sess.form.Submit(context.Background()); out != contact.OutcomeClosed {
		t.Fatalf("expired form still usable: %v", out)
	}
}

func TestSessionStoreEvictsLeastRecentlySeen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if err := openDB(":memory:"); err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Now()
	st := newSessionStore(contact.Simulated{}, time.Hour, 2)
	st.now = func() time.Time { return now }

	newVisitor := func() *visitorSession {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/contact/field", nil)
		now = now.Add(time.Second)
		return st.get(c)
	}

	first := newVisitor()
	newVisitor()
	newVisitor()

	if n := st.count(); n != 2 {
		t.Fatalf("store holds %d sessions, want 2", n)
	}
	if out, _ := first.form.Submit(context.Background()); out != contact.OutcomeClosed {
		t.Fatalf("evicted session still usable: %v", out)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if st.peek(c) != nil || st.count() != 2 {
		t.Fatalf("peek without a cookie created a session")
	}
}
