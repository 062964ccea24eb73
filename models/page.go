package models

// RawSpecPair is a key/value pair lifted directly from markup.
type RawSpecPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ImageCandidate is an image found on a page before it becomes a ProductImage.
type ImageCandidate struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// PageData is the unstructured bag of fields extracted from one product page.
type PageData struct {
	URL              string           `json:"url"`
	Name             string           `json:"name"`
	Tagline          string           `json:"tagline,omitempty"`
	Description      string           `json:"description,omitempty"`
	ShortDescription string           `json:"short_description,omitempty"`
	Specs            []RawSpecPair    `json:"specs,omitempty"`
	Features         []string         `json:"features,omitempty"`
	Images           []ImageCandidate `json:"images,omitempty"`
}
