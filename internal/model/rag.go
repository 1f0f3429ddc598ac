package model

// SearchHit is a single nearest-neighbor match returned by the vector index.
// Filename may be empty when the stored payload lacks one.
type SearchHit struct {
	Content  string  `json:"content"`
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// AnswerResponse is the result of a full-corpus query.
// SimilarityScores keeps one entry per hit in hit order and is intentionally
// not deduplicated alongside Sources, so the two lists can differ in length.
type AnswerResponse struct {
	Answer           string    `json:"answer"`
	Sources          []string  `json:"sources"`
	ChunksUsed       int       `json:"chunks_used"`
	SimilarityScores []float64 `json:"similarity_scores,omitempty"`
	Query            string    `json:"query"`
	ResponseTime     float64   `json:"response_time"`
	Model            string    `json:"model,omitempty"`
}

// SelectedTextResponse is the result of a selection-only query.
type SelectedTextResponse struct {
	Answer             string  `json:"answer"`
	Source             string  `json:"source"`
	Query              string  `json:"query"`
	SelectedTextLength int     `json:"selected_text_length"`
	ResponseTime       float64 `json:"response_time"`
	Model              string  `json:"model"`
}
