// Package prompts renders the fixed prompt templates for each pipeline stage.
// Rendering is pure string interpolation: same inputs, same prompt.
package prompts

import (
	"fmt"
	"strings"

	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/utils"
)

// maxPromptRunes caps prompt length before it is sent to a provider.
const maxPromptRunes = 15000

const truncationMarker = "\n\n[Content truncated due to length]"

// BuildReportPrompt renders the research-report prompt from the topic, the
// collected search results and the optional encyclopedia extract.
func BuildReportPrompt(topic string, results []models.SearchResult, wiki *models.EncyclopediaSummary, language models.Language) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("%w: topic is empty", models.ErrValidation)
	}

	var web strings.Builder
	for _, r := range results {
		fmt.Fprintf(&web, "Title: %s\nContent: %s\nSource: %s\n\n", r.Title, r.Snippet, r.URL)
	}
	webContext := web.String()
	if webContext == "" {
		webContext = "(no web search results available)"
	}

	wikiContext := "(no encyclopedia reference available)"
	if wiki != nil {
		wikiContext = fmt.Sprintf("Wikipedia Summary: %s", wiki.Extract)
	}

	prompt := fmt.Sprintf(`You are a senior researcher. Analyze the following information about "%s" and create a comprehensive research report. The final article will be written in %s.

Create a structured research report that includes:
1. Executive Summary
2. Key Findings and Current Trends
3. Applications and Use Cases
4. Challenges and Limitations
5. Future Outlook
6. Key Statistics (if available)
7. Important Sources

Make the report informative, well-organized, and based on the provided research data.
Focus on accuracy and cite relevant information from the sources.

WEB SEARCH RESULTS:
%s

WIKIPEDIA REFERENCE:
%s`, topic, language, webContext, wikiContext)

	return utils.Truncate(prompt, maxPromptRunes, truncationMarker), nil
}

// BuildArticlePrompt renders the article-writing prompt from a report.
func BuildArticlePrompt(topic string, report *models.ResearchReport, language models.Language, depth models.ResearchDepth) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("%w: topic is empty", models.ErrValidation)
	}
	if report == nil || strings.TrimSpace(report.RawText) == "" {
		return "", fmt.Errorf("%w: research report is empty", models.ErrValidation)
	}

	depthInstruction := "Create a well-structured article (800-1200 words) covering the key points."
	if depth == models.DepthDetailed {
		depthInstruction = "Create a detailed, comprehensive article (1500-2000 words) with in-depth analysis."
	}

	prompt := fmt.Sprintf(`You are a professional content writer. Based on the research report below, write an engaging article about "%s" in %s.

REQUIREMENTS:
- Write entirely in %s language
- %s
- Structure: Introduction, Main Body (3-4 sections), Conclusion
- Use clear headings and subheadings
- Make it accessible to both technical and general audiences
- Include relevant examples and insights from the research
- Ensure proper flow and engaging style
- Add a compelling introduction and strong conclusion

Create a publication-ready article that effectively communicates the topic's importance and implications.

RESEARCH REPORT:
%s`, topic, language, language, depthInstruction, report.RawText)

	return utils.Truncate(prompt, maxPromptRunes, truncationMarker), nil
}

// BuildImprovePrompt renders the editing prompt for one improve cycle.
func BuildImprovePrompt(article *models.Article, instruction string) (string, error) {
	if article == nil || strings.TrimSpace(article.Body) == "" {
		return "", fmt.Errorf("%w: article body is empty", models.ErrValidation)
	}
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("%w: improvement instruction is empty", models.ErrValidation)
	}

	prompt := fmt.Sprintf(`You are a professional editor. Review and improve the following article about "%s" in %s.

IMPROVEMENT INSTRUCTION:
%s

Also enhance readability, flow and structure, fix grammar and language issues, and keep a consistent tone.
Return the improved, polished version of the article that's ready for publication.
Maintain the same language (%s) and overall content while making it significantly better.
Respond with the article text only.

ARTICLE TO IMPROVE:
%s`, article.Title, article.Language, instruction, article.Language, article.Body)

	return utils.Truncate(prompt, maxPromptRunes, truncationMarker), nil
}
