package embedding

// EmbeddingProvider turns text into the vectors stored in the chunk tables
// and used for similarity search. taskType hints query vs document when the
// backend distinguishes them.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}
