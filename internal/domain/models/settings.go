package models

// Settings holds user-level preferences persisted alongside the collections.
type Settings struct {
	Theme        string `json:"theme"`         // "light", "dark"
	Language     string `json:"language"`      // BCP 47-ish short code, e.g. "en"
	AutoSave     bool   `json:"auto_save"`     // persist documents on every edit
	ExportFormat string `json:"export_format"` // "markdown", "pdf", "docx"
}

// DefaultSettings returns the settings object used to seed an uninitialized
// settings collection.
func DefaultSettings() *Settings {
	return &Settings{
		Theme:        "light",
		Language:     "en",
		AutoSave:     true,
		ExportFormat: "markdown",
	}
}
