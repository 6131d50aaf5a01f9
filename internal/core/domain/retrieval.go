package domain

// RetrievedChunk is one similarity hit. Score is an opaque ascending
// ordering key: lower means more similar.
type RetrievedChunk struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Text       string  `json:"text"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// SourceRef identifies a document that contributed to an answer.
type SourceRef struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
}

type Answer struct {
	Text    string      `json:"text"`
	Context string      `json:"context,omitempty"`
	Sources []SourceRef `json:"sources,omitempty"`
}
