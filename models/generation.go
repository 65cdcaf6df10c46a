// Package models defines the core domain types shared by the ABAssist tools.
package models

// Template is a named XML template read from the template directory.
//
// Templates are owned by operators who edit them on disk; the portal only
// ever reads them and never caches the content between requests.
type Template struct {
	// Name is the file name inside the template directory (e.g.
	// "payment_request.xml"). It is unique within the directory.
	Name string `json:"name"`

	// Content is the raw template text including its {{placeholders}}.
	Content string `json:"content"`
}

// GenerationRecord is one logged, successful template render.
//
// Records are append-only: the portal writes one per generation and never
// updates or deletes them.
type GenerationRecord struct {
	// ID is assigned by the log store on append (auto-incrementing).
	ID uint64 `json:"id"`

	// Timestamp is the UTC time of the generation in ISO-8601 form.
	Timestamp string `json:"timestamp"`

	// TemplateName is the name of the template that was rendered.
	TemplateName string `json:"templateName"`

	// SubmittedData is the JSON-serialised submission mapping.
	SubmittedData string `json:"submittedData"`

	// GeneratedXML is the rendered output.
	GeneratedXML string `json:"generatedXml"`
}
