package model

// Chunk is one retrieval unit produced by the markdown chunker.
type Chunk struct {
	Content    string `json:"content"`
	TokenCount int    `json:"token_count"`
	Position   int    `json:"position"`
}

// ChunkPoint is a chunk paired with its embedding, ready for index upsert.
type ChunkPoint struct {
	ID       string    `json:"id"`
	Vector   []float32 `json:"vector"`
	Content  string    `json:"content"`
	Filename string    `json:"filename"`
	Position int       `json:"position"`
}

// IngestResult summarizes one ingestion run over the corpus store.
type IngestResult struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}
