package domain

// ImportRecord is one link entry found in a bookmark file
type ImportRecord struct {
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	FolderName *string `json:"folder_name"`
}

// FolderDraft is a folder identity created during a single import run,
// before anything is persisted
type FolderDraft struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	ImportOrder int    `json:"import_order"`
}

// ImportResult is the outcome of parsing a bookmark file
type ImportResult struct {
	Records []ImportRecord `json:"records"`
	Folders []FolderDraft  `json:"folders"`
}

// ImportSummary reports what an import persisted
type ImportSummary struct {
	Imported       int `json:"imported"`
	Skipped        int `json:"skipped"`
	FoldersCreated int `json:"folders_created"`
}

// Succeeded reports whether at least one bookmark was imported
func (s ImportSummary) Succeeded() bool {
	return s.Imported > 0
}
