package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anirudh-hegde/scribe/internal/export"
	"github.com/anirudh-hegde/scribe/internal/pipeline"
	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/provider"
	"github.com/anirudh-hegde/scribe/session"
)

// SessionsHandler exposes the pipeline over the JSON API. Each route maps to
// one user-triggered transition; a failed transition leaves the stored
// session in its last good state. Transitions on the same session are
// serialized so concurrent requests cannot interleave a get-modify-save.
type SessionsHandler struct {
	Pipeline *pipeline.Pipeline
	Sessions session.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lockSession takes the per-session lock, returning its unlock func.
func (h *SessionsHandler) lockSession(id string) func() {
	h.mu.Lock()
	if h.locks == nil {
		h.locks = make(map[string]*sync.Mutex)
	}
	l, ok := h.locks[id]
	if !ok {
		l = &sync.Mutex{}
		h.locks[id] = l
	}
	h.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// dropLock discards the lock for a session that no longer exists.
func (h *SessionsHandler) dropLock(id string) {
	h.mu.Lock()
	delete(h.locks, id)
	h.mu.Unlock()
}

func (h *SessionsHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.POST("/:id/article", h.writeArticle)
	g.POST("/:id/improve", h.improve)
	g.GET("/:id/export", h.export)
	g.DELETE("/:id", h.delete)
}

// create starts a session and runs the research transition in one action.
// When research fails, nothing is stored: the caller gets the error and no
// partial session exists.
func (h *SessionsHandler) create(c echo.Context) error {
	var req struct {
		Topic    string `json:"topic"`
		Language string `json:"language"`
		Model    string `json:"model"`
		Depth    string `json:"depth"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	query := models.ResearchQuery{Topic: req.Topic, Language: models.Language(req.Language)}
	sess, err := h.Pipeline.NewSession(query, req.Model, models.ResearchDepth(req.Depth))
	if err != nil {
		return httpError(err)
	}

	start := time.Now()
	err = h.Pipeline.Research(c.Request().Context(), sess)
	observeStage("research", start, err)
	if err != nil {
		return httpError(err)
	}

	if err := h.Sessions.Create(c.Request().Context(), sess); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *SessionsHandler) get(c echo.Context) error {
	sess, err := h.Sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *SessionsHandler) writeArticle(c echo.Context) error {
	ctx := c.Request().Context()
	unlock := h.lockSession(c.Param("id"))
	defer unlock()

	sess, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		h.dropLock(c.Param("id"))
		return httpError(err)
	}

	start := time.Now()
	err = h.Pipeline.WriteArticle(ctx, sess)
	observeStage("write", start, err)
	if err != nil {
		return httpError(err)
	}

	if err := h.Sessions.Save(ctx, sess); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *SessionsHandler) improve(c echo.Context) error {
	ctx := c.Request().Context()
	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	unlock := h.lockSession(c.Param("id"))
	defer unlock()

	sess, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		h.dropLock(c.Param("id"))
		return httpError(err)
	}

	start := time.Now()
	err = h.Pipeline.Improve(ctx, sess, req.Instruction)
	observeStage("improve", start, err)
	if err != nil {
		return httpError(err)
	}

	if err := h.Sessions.Save(ctx, sess); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *SessionsHandler) export(c echo.Context) error {
	ctx := c.Request().Context()
	format := models.ExportFormat(c.QueryParam("format"))
	if format == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "format query parameter required")
	}

	unlock := h.lockSession(c.Param("id"))
	defer unlock()

	sess, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		h.dropLock(c.Param("id"))
		return httpError(err)
	}

	start := time.Now()
	doc, filename, err := h.Pipeline.Export(sess, format)
	observeStage("export", start, err)
	if err != nil {
		return httpError(err)
	}

	if err := h.Sessions.Save(ctx, sess); err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, export.ContentType(format), []byte(doc))
}

func (h *SessionsHandler) delete(c echo.Context) error {
	id := c.Param("id")
	unlock := h.lockSession(id)
	defer unlock()

	if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	h.dropLock(id)
	return c.NoContent(http.StatusNoContent)
}

// httpError maps the error taxonomy onto HTTP status codes.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, export.ErrUnsupportedFormat):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, pipeline.ErrWrongState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, provider.ErrRateLimit):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, provider.ErrAuth), errors.Is(err, provider.ErrTransport), errors.Is(err, pipeline.ErrNoSources):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
