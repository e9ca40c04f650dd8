package models

// Embedding is a single vector returned by the embeddings endpoint.
type Embedding []float64

func (e Embedding) Float32() []float32 {
	out := make([]float32, len(e))
	for i, v := range e {
		out[i] = float32(v)
	}
	return out
}

type EmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingItem struct {
	Index     int       `json:"index"`
	Embedding Embedding `json:"embedding"`
}

// EmbeddingResponse covers both wire shapes: ollama returns "embeddings",
// OpenAI-compatible servers such as litellm return "data".
type EmbeddingResponse struct {
	Model      string          `json:"model"`
	Embeddings []Embedding     `json:"embeddings"`
	Data       []embeddingItem `json:"data"`
}

// Vector returns the first embedding in the response, or nil when there is none.
func (r EmbeddingResponse) Vector() Embedding {
	switch {
	case len(r.Embeddings) > 0:
		return r.Embeddings[0]
	case len(r.Data) > 0:
		return r.Data[0].Embedding
	default:
		return nil
	}
}
