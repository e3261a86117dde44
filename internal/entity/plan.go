package entity

// PlanDocument is the export-neutral form of a project plan
type PlanDocument struct {
	Title    string
	Subtitle string
	Sections []PlanSection
}

// PlanSection is a heading followed by an optional paragraph and a list
type PlanSection struct {
	Heading string
	Text    string
	Items   []string
}

// ExportResult is a rendered plan ready to be sent as a file
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}
