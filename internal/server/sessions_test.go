package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anirudh-hegde/scribe/internal/pipeline"
	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/provider"
	"github.com/anirudh-hegde/scribe/session/inmemory"
)

type stubProvider struct {
	err   error
	delay time.Duration
}

func (s *stubProvider) Complete(context.Context, string, string) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return "", s.err
	}
	return "- finding one\n\nGenerated body text.", nil
}

func (s *stubProvider) Models() []string { return []string{"stub-model"} }

func (s *stubProvider) Ping(context.Context) error { return s.err }

type stubSearcher struct {
	results []models.SearchResult
	err     error
}

func (s *stubSearcher) Search(context.Context, string, int) ([]models.SearchResult, error) {
	return s.results, s.err
}

func newTestHandler(llm *stubProvider, searcher *stubSearcher) *SessionsHandler {
	return &SessionsHandler{
		Pipeline: pipeline.New(llm, searcher, nil, "stub-model", 3, nil),
		Sessions: inmemory.NewStore(time.Hour),
	}
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newTestServer(h *SessionsHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	h.Register(e.Group("/api/sessions"))
	return e
}

func createSession(t *testing.T, e *echo.Echo) models.Session {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/sessions", `{"topic":"Solar Energy","language":"English"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var sess models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	return sess
}

func TestSessionsFullFlow(t *testing.T) {
	llm := &stubProvider{}
	h := newTestHandler(llm, &stubSearcher{results: []models.SearchResult{{Title: "x", Snippet: "y", URL: "z"}}})
	e := newTestServer(h)

	sess := createSession(t, e)
	if sess.ID == "" {
		t.Fatal("created session has no ID")
	}
	if sess.State != models.StateReportReady {
		t.Fatalf("state = %s", sess.State)
	}

	rec := doJSON(e, http.MethodGet, "/api/sessions/"+sess.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/sessions/"+sess.ID+"/article", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("write status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got models.Session
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Article == nil || got.Article.Version != 1 {
		t.Fatalf("article after write: %+v", got.Article)
	}

	rec = doJSON(e, http.MethodPost, "/api/sessions/"+sess.ID+"/improve", `{"instruction":"make it shorter"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("improve status = %d, body %s", rec.Code, rec.Body.String())
	}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Article.Version != 2 {
		t.Fatalf("version after improve = %d", got.Article.Version)
	}

	rec = doJSON(e, http.MethodGet, "/api/sessions/"+sess.ID+"/export?format=markdown", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "# Solar Energy") {
		t.Fatalf("export body: %q", rec.Body.String())
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "Solar_Energy_research_article.md") {
		t.Fatalf("content disposition: %q", cd)
	}

	rec = doJSON(e, http.MethodDelete, "/api/sessions/"+sess.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/sessions/"+sess.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestConcurrentImprovesSerialized(t *testing.T) {
	llm := &stubProvider{delay: 20 * time.Millisecond}
	h := newTestHandler(llm, &stubSearcher{results: []models.SearchResult{{Title: "x"}}})
	e := newTestServer(h)

	sess := createSession(t, e)
	if rec := doJSON(e, http.MethodPost, "/api/sessions/"+sess.ID+"/article", ""); rec.Code != http.StatusOK {
		t.Fatalf("write status = %d", rec.Code)
	}

	const n = 4
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := doJSON(e, http.MethodPost, "/api/sessions/"+sess.ID+"/improve", `{"instruction":"tighten the prose"}`)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("improve %d: status = %d", i, code)
		}
	}
	stored, err := h.Sessions.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Article.Version != 1+n {
		t.Fatalf("version = %d, want %d (one bump per successful improve)", stored.Article.Version, 1+n)
	}
}

func TestCreateValidationError(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubSearcher{})
	e := newTestServer(h)

	rec := doJSON(e, http.MethodPost, "/api/sessions", `{"topic":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/sessions", `{"topic":"T","language":"Klingon"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateNoSourcesStoresNothing(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubSearcher{})
	e := newTestServer(h)

	rec := doJSON(e, http.MethodPost, "/api/sessions", `{"topic":"Obscure"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestWriteArticleRateLimited(t *testing.T) {
	llm := &stubProvider{}
	h := newTestHandler(llm, &stubSearcher{results: []models.SearchResult{{Title: "x"}}})
	e := newTestServer(h)

	sess := createSession(t, e)

	llm.err = fmt.Errorf("%w: status 429", provider.ErrRateLimit)
	rec := doJSON(e, http.MethodPost, "/api/sessions/"+sess.ID+"/article", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}

	stored, err := h.Sessions.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.State != models.StateReportReady || stored.Article != nil {
		t.Fatalf("stored session after failed write: state=%s article=%+v", stored.State, stored.Article)
	}
}

func TestWrongStateConflict(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubSearcher{results: []models.SearchResult{{Title: "x"}}})
	e := newTestServer(h)

	sess := createSession(t, e)

	rec := doJSON(e, http.MethodPost, "/api/sessions/"+sess.ID+"/improve", `{"instruction":"polish"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("improve before article: status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/sessions/"+sess.ID+"/export?format=text", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("export before article: status = %d", rec.Code)
	}
}

func TestExportBadFormat(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubSearcher{results: []models.SearchResult{{Title: "x"}}})
	e := newTestServer(h)

	sess := createSession(t, e)
	rec := doJSON(e, http.MethodPost, "/api/sessions/"+sess.ID+"/article", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("write status = %d", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/sessions/"+sess.ID+"/export?format=pdf", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/sessions/"+sess.ID+"/export", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing format: status = %d", rec.Code)
	}
}

func TestGetUnknownSession(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubSearcher{})
	e := newTestServer(h)

	rec := doJSON(e, http.MethodGet, "/api/sessions/does-not-exist", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: bad topic", models.ErrValidation), http.StatusBadRequest},
		{models.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: no", pipeline.ErrWrongState), http.StatusConflict},
		{fmt.Errorf("%w", provider.ErrRateLimit), http.StatusTooManyRequests},
		{fmt.Errorf("%w", provider.ErrAuth), http.StatusBadGateway},
		{fmt.Errorf("%w", provider.ErrTransport), http.StatusBadGateway},
		{fmt.Errorf("%w for topic", pipeline.ErrNoSources), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := httpError(tc.err); got.Code != tc.code {
			t.Errorf("httpError(%v) = %d, want %d", tc.err, got.Code, tc.code)
		}
	}
}
