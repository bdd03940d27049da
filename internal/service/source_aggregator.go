package service

import (
	"regexp"
	"sort"
	"strings"

	"workmate-ai/internal/domain"
)

// Citation strings arrive in three shapes: a bracketed list, a comma-joined
// list, or a single bare entry. Bracketed segments win over comma splitting.
var bracketedEntryRe = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Trailing page indicator: (P.3), (12), (3-5) or any parenthesized text at
// the very end of an entry.
var pageSuffixRe = regexp.MustCompile(`\(([^()]+)\)\s*$`)

// SourceAggregator walks an ordered message history and produces the ranked,
// de-duplicated reference list for the citation panel. It holds no state:
// every call recomputes from the snapshot it is given, so invoking it on
// every render is safe.
type SourceAggregator struct{}

// DefaultSourceAggregator permits direct use without instantiating.
var DefaultSourceAggregator = SourceAggregator{}

// Aggregate merges every assistant citation in messages into SourceReference
// entries keyed by name+page, ranked by occurrence count descending with
// first-seen order breaking ties.
func (SourceAggregator) Aggregate(messages []domain.ChatMessage) []domain.SourceReference {
	index := make(map[string]int)
	var refs []domain.SourceReference

	for _, msg := range messages {
		if msg.IsFromUser {
			continue
		}
		citation := strings.TrimSpace(msg.Citation)
		if citation == "" {
			continue
		}
		for _, entry := range splitCitation(citation) {
			ref := parseEntry(entry)
			if ref.Name == "" {
				continue
			}
			key := ref.Key()
			if i, ok := index[key]; ok {
				refs[i].OccurrenceCount++
				continue
			}
			index[key] = len(refs)
			refs = append(refs, ref)
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].OccurrenceCount > refs[j].OccurrenceCount
	})
	return refs
}

// splitCitation breaks a raw citation string into individual source entries.
// An unparseable string falls through as a single entry, never an error.
func splitCitation(citation string) []string {
	if m := bracketedEntryRe.FindAllStringSubmatch(citation, -1); len(m) > 0 {
		entries := make([]string, 0, len(m))
		for _, seg := range m {
			if e := strings.TrimSpace(seg[1]); e != "" {
				entries = append(entries, e)
			}
		}
		return entries
	}
	if strings.Contains(citation, ",") {
		parts := strings.Split(citation, ",")
		entries := make([]string, 0, len(parts))
		for _, p := range parts {
			if e := strings.TrimSpace(p); e != "" {
				entries = append(entries, e)
			}
		}
		return entries
	}
	return []string{citation}
}

// parseEntry splits off an optional trailing page indicator and marks URLs.
func parseEntry(entry string) domain.SourceReference {
	name := strings.TrimSpace(entry)
	page := ""
	if loc := pageSuffixRe.FindStringSubmatchIndex(name); loc != nil {
		page = strings.TrimSpace(name[loc[2]:loc[3]])
		page = strings.TrimPrefix(page, "P.")
		name = strings.TrimSpace(name[:loc[0]])
	}
	return domain.SourceReference{
		Name:            name,
		Page:            page,
		IsURL:           strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://"),
		OccurrenceCount: 1,
	}
}
