package service

import (
	"strings"

	"workmate-ai/internal/domain"
)

// Display labels for the reference panel. The product surface is Japanese.
const (
	labelWebsite  = "Webサイト"
	labelPdf      = "PDF文書"
	labelExcel    = "Excel文書"
	labelDocument = "ドキュメント"
)

// maxDisplayNameRunes bounds the panel entry width; the full name stays
// available on SourceReference for a tooltip surface.
const maxDisplayNameRunes = 25

// SourceClassifier annotates aggregated references with an icon kind and a
// human label for rendering.
type SourceClassifier struct{}

// DefaultSourceClassifier permits direct use without instantiating.
var DefaultSourceClassifier = SourceClassifier{}

// Classify decides URL vs document type from the reference name. Extension
// matching is case-insensitive here so Report.PDF still renders as a PDF.
func (SourceClassifier) Classify(ref domain.SourceReference) domain.ClassifiedReference {
	out := domain.ClassifiedReference{
		SourceReference: ref,
		DisplayName:     truncateDisplayName(ref.Name),
	}

	lower := strings.ToLower(ref.Name)
	switch {
	case ref.IsURL:
		out.Icon = domain.IconLink
		out.DisplayLabel = labelWebsite
	case strings.HasSuffix(lower, ".pdf"):
		out.Icon = domain.IconPdf
		out.DisplayLabel = labelPdf
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
		out.Icon = domain.IconSpreadsheet
		out.DisplayLabel = labelExcel
	default:
		out.Icon = domain.IconDocument
		out.DisplayLabel = labelDocument
	}
	return out
}

func truncateDisplayName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxDisplayNameRunes {
		return name
	}
	return string(runes[:maxDisplayNameRunes]) + "..."
}
