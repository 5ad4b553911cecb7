// Package pipeline sequences the research, writing, improvement and export
// stages over a single session. Transitions are synchronous and
// user-triggered; a failed transition reports its error and leaves the
// session in its last good state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anirudh-hegde/scribe/internal/export"
	"github.com/anirudh-hegde/scribe/internal/prompts"
	"github.com/anirudh-hegde/scribe/internal/report"
	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/provider"
	"github.com/anirudh-hegde/scribe/tools/encyclopedia"
	"github.com/anirudh-hegde/scribe/tools/web_search"
)

// ErrWrongState is returned when an action is not allowed in the session's
// current state.
var ErrWrongState = errors.New("action not allowed in current state")

// ErrNoSources is returned when neither web search nor the encyclopedia
// produced any material to research from.
var ErrNoSources = errors.New("research found no sources")

// polishInstruction drives the automatic improve pass for detailed depth.
const polishInstruction = "Enhance readability and flow, improve structure and organization, add better transitions between sections, and make the content more engaging."

// Pipeline owns the stage sequencing. It holds no session state itself; the
// session struct is passed in and mutated explicitly.
type Pipeline struct {
	llm          provider.Provider
	searcher     web_search.WebSearcher // nil when no search key is configured
	wiki         *encyclopedia.Client   // nil when encyclopedia lookup is disabled
	defaultModel string
	maxResults   int
	logger       *log.Logger
}

func New(llm provider.Provider, searcher web_search.WebSearcher, wiki *encyclopedia.Client, defaultModel string, maxResults int, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)
	}
	if maxResults <= 0 || maxResults > web_search.MaxResults {
		maxResults = 3
	}
	return &Pipeline{
		llm:          llm,
		searcher:     searcher,
		wiki:         wiki,
		defaultModel: defaultModel,
		maxResults:   maxResults,
		logger:       logger,
	}
}

// NewSession validates the inputs and returns a fresh idle session.
func (p *Pipeline) NewSession(query models.ResearchQuery, model string, depth models.ResearchDepth) (*models.Session, error) {
	if strings.TrimSpace(query.Topic) == "" {
		return nil, fmt.Errorf("%w: topic is empty", models.ErrValidation)
	}
	if query.Language == "" {
		query.Language = models.LanguageEnglish
	}
	if !query.Language.Valid() {
		return nil, fmt.Errorf("%w: unsupported language %q", models.ErrValidation, query.Language)
	}
	if model == "" {
		model = p.defaultModel
	}
	if !provider.KnownModel(p.llm, model) {
		return nil, fmt.Errorf("%w: unknown model %q", models.ErrValidation, model)
	}
	if depth == "" {
		depth = models.DepthBasic
	}
	if !depth.Valid() {
		return nil, fmt.Errorf("%w: unsupported research depth %q", models.ErrValidation, depth)
	}
	now := time.Now().UTC()
	return &models.Session{
		State:     models.StateIdle,
		Query:     query,
		Model:     model,
		Depth:     depth,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Research gathers search results and the encyclopedia extract, then asks the
// model for a structured report. On any failure the session rolls back to
// idle with nothing retained.
func (p *Pipeline) Research(ctx context.Context, sess *models.Session) error {
	sess.State = models.StateResearching
	sess.Results = nil
	sess.Wiki = nil
	sess.Report = nil
	sess.Article = nil
	sess.Warnings = nil
	topic := sess.Query.Topic

	if p.searcher == nil {
		p.warn(sess, "web search is not configured; researching without web sources")
	} else {
		for _, q := range web_search.ResearchQueries(topic) {
			results, err := p.searcher.Search(ctx, q, p.maxResults)
			if err != nil {
				p.warn(sess, fmt.Sprintf("web search failed for %q: %v", q, err))
				continue
			}
			sess.Results = append(sess.Results, results...)
		}
	}

	if p.wiki != nil {
		wiki, err := p.wiki.Summary(ctx, topic)
		if err != nil {
			p.warn(sess, fmt.Sprintf("encyclopedia lookup failed: %v", err))
		} else {
			sess.Wiki = wiki
		}
	}

	if len(sess.Results) == 0 && sess.Wiki == nil {
		p.rollbackToIdle(sess)
		return fmt.Errorf("%w for %q", ErrNoSources, topic)
	}

	prompt, err := prompts.BuildReportPrompt(topic, sess.Results, sess.Wiki, sess.Query.Language)
	if err != nil {
		p.rollbackToIdle(sess)
		return err
	}

	raw, err := p.llm.Complete(ctx, prompt, sess.Model)
	if err != nil {
		p.rollbackToIdle(sess)
		return fmt.Errorf("generating research report: %w", err)
	}

	rep := report.Parse(topic, raw)
	sess.Report = &rep
	sess.State = models.StateReportReady
	sess.UpdatedAt = time.Now().UTC()
	p.logger.Printf("research complete for %q: %d sources, report %d chars", topic, len(sess.Results), len(raw))
	return nil
}

// WriteArticle turns the current report into an article at version 1. For
// detailed depth one automatic polish pass follows; its failure keeps the
// unpolished article and records a warning.
func (p *Pipeline) WriteArticle(ctx context.Context, sess *models.Session) error {
	switch sess.State {
	case models.StateReportReady, models.StateArticleReady, models.StateExported:
	default:
		return fmt.Errorf("%w: cannot write article from state %s", ErrWrongState, sess.State)
	}
	prev := sess.State
	sess.State = models.StateWriting

	prompt, err := prompts.BuildArticlePrompt(sess.Query.Topic, sess.Report, sess.Query.Language, sess.Depth)
	if err != nil {
		sess.State = prev
		return err
	}

	body, err := p.llm.Complete(ctx, prompt, sess.Model)
	if err != nil {
		sess.State = prev
		return fmt.Errorf("writing article: %w", err)
	}

	sess.Article = &models.Article{
		Title:    sess.Query.Topic,
		Body:     body,
		Language: sess.Query.Language,
		Version:  1,
	}
	sess.State = models.StateArticleReady
	sess.UpdatedAt = time.Now().UTC()
	p.logger.Printf("article v1 written for %q (%d chars)", sess.Query.Topic, len(body))

	if sess.Depth == models.DepthDetailed {
		if err := p.Improve(ctx, sess, polishInstruction); err != nil {
			p.warn(sess, fmt.Sprintf("automatic polish failed, keeping unpolished article: %v", err))
		}
	}
	return nil
}

// Improve runs one edit cycle over the current article body. On success the
// body is replaced and the version incremented; on failure the article is
// untouched. Repeatable any number of times.
func (p *Pipeline) Improve(ctx context.Context, sess *models.Session, instruction string) error {
	switch sess.State {
	case models.StateArticleReady, models.StateExported:
	default:
		return fmt.Errorf("%w: cannot improve article from state %s", ErrWrongState, sess.State)
	}
	if strings.TrimSpace(instruction) == "" {
		return fmt.Errorf("%w: improvement instruction is empty", models.ErrValidation)
	}
	prev := sess.State
	sess.State = models.StateImproving

	prompt, err := prompts.BuildImprovePrompt(sess.Article, instruction)
	if err != nil {
		sess.State = prev
		return err
	}

	body, err := p.llm.Complete(ctx, prompt, sess.Model)
	if err != nil {
		sess.State = prev
		return fmt.Errorf("improving article: %w", err)
	}

	sess.Article.Body = body
	sess.Article.Version++
	sess.State = models.StateArticleReady
	sess.UpdatedAt = time.Now().UTC()
	p.logger.Printf("article improved for %q, now v%d", sess.Query.Topic, sess.Article.Version)
	return nil
}

// Export renders the article in the requested format. Rendering is pure and
// re-exporting the same article yields identical bytes.
func (p *Pipeline) Export(sess *models.Session, format models.ExportFormat) (doc string, filename string, err error) {
	switch sess.State {
	case models.StateArticleReady, models.StateExported:
	default:
		return "", "", fmt.Errorf("%w: cannot export from state %s", ErrWrongState, sess.State)
	}
	doc, err = export.Render(sess.Article, format)
	if err != nil {
		return "", "", err
	}
	sess.State = models.StateExported
	sess.UpdatedAt = time.Now().UTC()
	return doc, export.Filename(sess.Article, format), nil
}

func (p *Pipeline) warn(sess *models.Session, msg string) {
	sess.Warnings = append(sess.Warnings, msg)
	p.logger.Printf("warning: %s", msg)
}

func (p *Pipeline) rollbackToIdle(sess *models.Session) {
	sess.State = models.StateIdle
	sess.Results = nil
	sess.Wiki = nil
	sess.Report = nil
	sess.Article = nil
	sess.UpdatedAt = time.Now().UTC()
}
