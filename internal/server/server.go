package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anirudh-hegde/scribe/config"
	"github.com/anirudh-hegde/scribe/internal/pipeline"
	"github.com/anirudh-hegde/scribe/provider"
	"github.com/anirudh-hegde/scribe/session"
	"github.com/anirudh-hegde/scribe/tools/encyclopedia"
	"github.com/anirudh-hegde/scribe/tools/web_search"
)

func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Shared dependencies (top-level DI). The model credential is verified
	// once here; a bad key stops the server from starting.
	llm, err := provider.New(cfg.LLM)
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := llm.Ping(pingCtx); err != nil {
		return fmt.Errorf("model provider connection test failed: %w", err)
	}
	log.Printf("model provider %s ready (default model %s)", cfg.LLM.Provider, cfg.LLM.Model)

	var searcher web_search.WebSearcher
	if cfg.Search.APIKey != "" {
		searcher, err = web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey)
		if err != nil {
			return err
		}
	} else {
		log.Printf("no search API key configured; research will rely on the encyclopedia only")
	}

	var wiki *encyclopedia.Client
	if cfg.Encyclopedia.Enabled {
		wiki = encyclopedia.NewClient(cfg.Encyclopedia.Timeout)
	}

	sessions, err := session.NewStore(cfg.Session)
	if err != nil {
		return err
	}

	pipeLogger := log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)
	pipe := pipeline.New(llm, searcher, wiki, cfg.LLM.Model, cfg.Search.MaxResults, pipeLogger)

	e.GET("/", indexPage)

	api := e.Group("/api")
	sh := &SessionsHandler{Pipeline: pipe, Sessions: sessions}
	sh.Register(api.Group("/sessions"))

	oh := &OptionsHandler{LLM: llm}
	api.GET("/options", oh.options)

	st := &StatusHandler{Cfg: cfg, LLM: llm}
	api.GET("/status", st.status)

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
