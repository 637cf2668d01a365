package models

// Upload is a single PDF handed to the pipeline, either uploaded through the
// web UI or fetched from a URL or Zotero.
type Upload struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// SourceInfo contains information about where a non-uploaded PDF came from
type SourceInfo struct {
	ZoteroID string `json:"zotero_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// DocumentInfo describes what was extracted from one input document
type DocumentInfo struct {
	Name       string `json:"name"`
	PageCount  int    `json:"page_count"`
	TextLength int    `json:"text_length"`
}

// Image is a rendered diagram
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// MindMap is the result of one pipeline run. Nothing in it outlives the
// request that produced it.
type MindMap struct {
	ID         string         `json:"id"`
	Summary    string         `json:"summary"`
	RawDiagram string         `json:"raw_diagram,omitempty"`
	Mermaid    string         `json:"mermaid"`
	Image      *Image         `json:"image,omitempty"`
	Documents  []DocumentInfo `json:"documents,omitempty"`
}
