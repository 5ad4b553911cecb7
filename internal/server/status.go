package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anirudh-hegde/scribe/config"
	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/provider"
)

// StatusHandler reports provider availability for the form page.
type StatusHandler struct {
	Cfg *config.Config
	LLM provider.Provider
}

func (h *StatusHandler) status(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	llmStatus := "ok"
	if err := h.LLM.Ping(ctx); err != nil {
		llmStatus = err.Error()
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"llm_provider":     h.Cfg.LLM.Provider,
		"llm_status":       llmStatus,
		"default_model":    h.Cfg.LLM.Model,
		"search_provider":  h.Cfg.Search.Provider,
		"search_available": h.Cfg.Search.APIKey != "",
		"encyclopedia":     h.Cfg.Encyclopedia.Enabled,
	})
}

// OptionsHandler lists the fixed selectors the form offers.
type OptionsHandler struct {
	LLM provider.Provider
}

func (h *OptionsHandler) options(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"languages": models.Languages(),
		"models":    h.LLM.Models(),
		"depths":    []models.ResearchDepth{models.DepthBasic, models.DepthDetailed},
		"formats":   models.ExportFormats(),
	})
}
