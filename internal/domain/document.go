package domain

// Document is an immutable snapshot of a study document handed to the
// analysis pipeline. The core never mutates it.
type Document struct {
	DocumentID   string       `json:"documentId"`
	ModuleID     string       `json:"moduleId"`
	DocumentType DocumentType `json:"documentType"`
	Text         string       `json:"text"`
}

// TextChunk is one overlapping window of a document produced per analysis
// run. Chunks are never persisted independently.
type TextChunk struct {
	Index    int    `json:"index"`
	StartPos int    `json:"startPos"`
	EndPos   int    `json:"endPos"`
	Text     string `json:"text"`
}
