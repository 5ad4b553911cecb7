// Package report turns a model's free-form research response into a
// ResearchReport. Sectioning is best-effort: the raw text is always kept and
// a response that matches no heading simply leaves the sections empty.
package report

import (
	"regexp"
	"strings"

	"github.com/anirudh-hegde/scribe/models"
)

type section int

const (
	sectionNone section = iota
	sectionFindings
	sectionChallenges
	sectionOutlook
)

// bulletRe matches list items. The report prompt asks for numbered section
// headings, so numbered lines are treated as headings, not items.
var bulletRe = regexp.MustCompile(`^\s*[-*•]\s+`)

var headingMarkerRe = regexp.MustCompile(`^\s*(?:#{1,6}\s*|\d+[.)]\s*|\*{2})`)

// Parse extracts key findings, challenges and the future outlook from raw.
// It never fails; unmatched content stays in RawText only.
func Parse(topic, raw string) models.ResearchReport {
	rep := models.ResearchReport{Topic: topic, RawText: raw}

	current := sectionNone
	var outlook []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if sec, isHeading := matchHeading(trimmed); isHeading {
			current = sec
			continue
		}

		switch current {
		case sectionFindings:
			if item, ok := bulletItem(trimmed); ok {
				rep.KeyFindings = append(rep.KeyFindings, item)
			}
		case sectionChallenges:
			if item, ok := bulletItem(trimmed); ok {
				rep.Challenges = append(rep.Challenges, item)
			}
		case sectionOutlook:
			outlook = append(outlook, trimmed)
		}
	}
	rep.FutureOutlook = strings.Join(outlook, "\n")
	return rep
}

// matchHeading reports whether the line is a heading and, if so, which
// tracked section it opens. A heading we do not track closes the current one.
func matchHeading(line string) (section, bool) {
	if bulletRe.MatchString(line) {
		return sectionNone, false
	}
	if !headingMarkerRe.MatchString(line) && !strings.HasSuffix(line, ":") {
		return sectionNone, false
	}

	stripped := headingMarkerRe.ReplaceAllString(line, "")
	stripped = strings.TrimSuffix(strings.TrimSpace(stripped), ":")
	lower := strings.ToLower(strings.Trim(stripped, "* "))

	switch {
	case strings.Contains(lower, "key finding"):
		return sectionFindings, true
	case strings.Contains(lower, "challenge"):
		return sectionChallenges, true
	case strings.Contains(lower, "future outlook"):
		return sectionOutlook, true
	default:
		return sectionNone, true
	}
}

func bulletItem(line string) (string, bool) {
	if !bulletRe.MatchString(line) {
		return "", false
	}
	item := bulletRe.ReplaceAllString(line, "")
	item = strings.TrimSpace(strings.Trim(item, "*"))
	if item == "" {
		return "", false
	}
	return item, true
}
