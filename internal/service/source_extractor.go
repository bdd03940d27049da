package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ExtractionRule names the pattern-library rule that produced a citation.
// Exposed so callers can count rule hits; tests rely on it to pin precedence.
type ExtractionRule string

const (
	RuleBackend        ExtractionRule = "backend"
	RuleLabeled        ExtractionRule = "labeled"
	RuleQuotedFilename ExtractionRule = "quoted_filename"
	RuleNarrative      ExtractionRule = "narrative"
	RuleInlineFilename ExtractionRule = "inline_filename"
	RuleLooseFilename  ExtractionRule = "loose_filename"
	RuleQuotedFallback ExtractionRule = "quoted_fallback"
	RuleGenericMarker  ExtractionRule = "generic_marker"
	RuleNone           ExtractionRule = "none"
)

// ExtractResult carries the cleaned display text and the resolved citation
// string (possibly empty) for one assistant response.
type ExtractResult struct {
	DisplayText string
	Citation    string
	Rule        ExtractionRule
}

// SourceExtractor resolves the citation for a single raw response. It is a
// best-effort heuristic cascade: high-precision patterns (explicit labels,
// extensioned filenames) preempt the looser ones, and the rule order is part
// of the contract. Pure and deterministic, no failure modes.
type SourceExtractor struct{}

// DefaultSourceExtractor permits direct use without instantiating.
var DefaultSourceExtractor = SourceExtractor{}

// Extract applies the pattern library to rawText unless the backend already
// supplied a citation, in which case the backend value wins verbatim and the
// text is left untouched.
func (SourceExtractor) Extract(rawText, backendCitation string) ExtractResult {
	if c := strings.TrimSpace(backendCitation); c != "" {
		return ExtractResult{DisplayText: rawText, Citation: c, Rule: RuleBackend}
	}

	// Rule 1: the matched label+value span is the one case where the display
	// text changes.
	if loc := labeledSourceRe.FindStringSubmatchIndex(rawText); loc != nil {
		citation := strings.TrimSpace(rawText[loc[2]:loc[3]])
		if citation != "" {
			display := strings.TrimSpace(rawText[:loc[0]] + rawText[loc[1]:])
			return ExtractResult{DisplayText: display, Citation: citation, Rule: RuleLabeled}
		}
	}

	if names := collectMatches(rawText, quotedFilenameRes); len(names) > 0 {
		return ExtractResult{DisplayText: rawText, Citation: strings.Join(names, ", "), Rule: RuleQuotedFilename}
	}

	if names := collectMatches(rawText, narrativeFilenameRes); len(names) > 0 {
		return ExtractResult{DisplayText: rawText, Citation: strings.Join(names, ", "), Rule: RuleNarrative}
	}

	if names := collectMatches(rawText, []*regexp.Regexp{inlineFilenameRe}); len(names) > 0 {
		return ExtractResult{DisplayText: rawText, Citation: strings.Join(names, ", "), Rule: RuleInlineFilename}
	}

	if names := collectMatches(rawText, []*regexp.Regexp{looseFilenameRe}); len(names) > 0 {
		return ExtractResult{DisplayText: rawText, Citation: strings.Join(names, ", "), Rule: RuleLooseFilename}
	}

	if containsReferenceKeyword(rawText) {
		quoted := collectMatches(rawText, quotedContentRes)
		usable := quoted[:0]
		for _, q := range quoted {
			if utf8.RuneCountInString(q) > 2 {
				usable = append(usable, q)
			}
		}
		if len(usable) > 3 {
			usable = usable[:3]
		}
		if len(usable) > 0 {
			return ExtractResult{DisplayText: rawText, Citation: strings.Join(usable, ", "), Rule: RuleQuotedFallback}
		}
		// Keyword-indicative language with nothing quotable: emit the fixed
		// placeholder rather than dropping the claim.
		return ExtractResult{DisplayText: rawText, Citation: genericSourcePlaceholder, Rule: RuleGenericMarker}
	}

	return ExtractResult{DisplayText: rawText, Rule: RuleNone}
}
