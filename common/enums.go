// Package common holds enums shared by configuration, request model and job
// records. Keeping them here lets report and jobs packages avoid importing
// the whole configuration.
package common

// Requested export artifact type.
// ENUM(pptx, pdf)
type Format int

// Ext returns artifact file extension including leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatPptx:
		return ".pptx"
	case FormatPdf:
		return ".pdf"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// MimeType returns media type of the produced artifact.
func (f Format) MimeType() string {
	switch f {
	case FormatPdf:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
}

// Plotly chart rendering backend.
// ENUM(native, browser, none)
type ChartBackend int

// Job registry implementation.
// ENUM(memory, sqlite)
type StoreKind int

// Job lifecycle state.
// ENUM(queued, processing, completed, failed)
type JobStatus int

// Terminal reports whether job reached its final state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
