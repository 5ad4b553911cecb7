package models

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session is not found
var ErrSessionNotFound = errors.New("session not found")

// ErrValidation marks empty or invalid user input. It is recovered locally by
// re-prompting the user, never by failing the session.
var ErrValidation = errors.New("invalid input")

// Language is the output language for generated articles.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageKannada Language = "Kannada"
	LanguageFrench  Language = "French"
	LanguageGerman  Language = "German"
	LanguageChinese Language = "Chinese"
)

// Languages lists the supported output languages in display order.
func Languages() []Language {
	return []Language{LanguageEnglish, LanguageKannada, LanguageFrench, LanguageGerman, LanguageChinese}
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	for _, known := range Languages() {
		if l == known {
			return true
		}
	}
	return false
}

// ResearchDepth controls how long the generated article should be and whether
// an automatic polish pass runs after writing.
type ResearchDepth string

const (
	DepthBasic    ResearchDepth = "basic"
	DepthDetailed ResearchDepth = "detailed"
)

func (d ResearchDepth) Valid() bool {
	return d == DepthBasic || d == DepthDetailed
}

// ResearchQuery is the immutable input that starts a research pass.
type ResearchQuery struct {
	Topic    string   `json:"topic"`
	Language Language `json:"language"`
}

// SearchResult is one ranked hit from a web-search provider. Order is the
// provider's ranking and is preserved end to end.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// EncyclopediaSummary is the optional encyclopedia extract attached to a
// research pass.
type EncyclopediaSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	URL     string `json:"url"`
}

// ResearchReport is the structured intermediate artifact derived from search
// results via the model. Sectioned fields are best-effort; RawText always
// carries the full model response.
type ResearchReport struct {
	Topic         string   `json:"topic"`
	KeyFindings   []string `json:"key_findings"`
	Challenges    []string `json:"challenges"`
	FutureOutlook string   `json:"future_outlook"`
	RawText       string   `json:"raw_text"`
}

// Article is the final user-facing prose document. Improve replaces Body and
// increments Version; prior versions are not retained.
type Article struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Language Language `json:"language"`
	Version  int      `json:"version"`
}

// ExportFormat selects the export rendering.
type ExportFormat string

const (
	FormatText     ExportFormat = "text"
	FormatMarkdown ExportFormat = "markdown"
	FormatHTML     ExportFormat = "html"
)

func ExportFormats() []ExportFormat {
	return []ExportFormat{FormatText, FormatMarkdown, FormatHTML}
}

// SessionState tracks where a session is in the research pipeline.
type SessionState string

const (
	StateIdle         SessionState = "idle"
	StateResearching  SessionState = "researching"
	StateReportReady  SessionState = "report_ready"
	StateWriting      SessionState = "writing"
	StateArticleReady SessionState = "article_ready"
	StateImproving    SessionState = "improving"
	StateExported     SessionState = "exported"
)

// Session holds all working state for one user's linear pass through the
// pipeline. It is owned by the pipeline controller and never shared across
// sessions.
type Session struct {
	ID        string               `json:"id"`
	State     SessionState         `json:"state"`
	Query     ResearchQuery        `json:"query"`
	Model     string               `json:"model"`
	Depth     ResearchDepth        `json:"depth"`
	Results   []SearchResult       `json:"results,omitempty"`
	Wiki      *EncyclopediaSummary `json:"wiki,omitempty"`
	Report    *ResearchReport      `json:"report,omitempty"`
	Article   *Article             `json:"article,omitempty"`
	Warnings  []string             `json:"warnings,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Clone returns a deep copy. The pipeline mutates sessions in place, so
// stores hand out clones rather than shared pointers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Results = append([]SearchResult(nil), s.Results...)
	cp.Warnings = append([]string(nil), s.Warnings...)
	if s.Wiki != nil {
		wiki := *s.Wiki
		cp.Wiki = &wiki
	}
	if s.Report != nil {
		report := *s.Report
		report.KeyFindings = append([]string(nil), s.Report.KeyFindings...)
		report.Challenges = append([]string(nil), s.Report.Challenges...)
		cp.Report = &report
	}
	if s.Article != nil {
		article := *s.Article
		cp.Article = &article
	}
	return &cp
}
