package domain

// SourceReference is one aggregated citation entry derived from the current
// message history. It is recomputed on demand and never persisted.
type SourceReference struct {
	Name            string `json:"name"`
	Page            string `json:"page,omitempty"`
	IsURL           bool   `json:"is_url"`
	OccurrenceCount int    `json:"occurrence_count"`
}

// Key identifies a reference inside the aggregation map. Two references with
// the same name but different pages are distinct entries.
func (r SourceReference) Key() string {
	return r.Name + "-" + r.Page
}

// IconKind tells the rendering surface which icon to show for a reference.
type IconKind string

const (
	IconLink        IconKind = "link"
	IconPdf         IconKind = "pdf"
	IconSpreadsheet IconKind = "spreadsheet"
	IconDocument    IconKind = "document"
)

// ClassifiedReference is a SourceReference annotated for display.
type ClassifiedReference struct {
	SourceReference
	DisplayName  string   `json:"display_name"`
	DisplayLabel string   `json:"display_label"`
	Icon         IconKind `json:"icon"`
}
