package domain

// Metadata is the best-effort preview data scraped from a web page
type Metadata struct {
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
	PreviewImageURL string `json:"preview_image_url" yaml:"preview_image_url"`
}
