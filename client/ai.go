package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrejsstepanovs/proposalpilot/config"
	"github.com/andrejsstepanovs/proposalpilot/models"
	fastshot "github.com/opus-domini/fast-shot"
)

var embedPaths = map[string]string{
	"litellm": "/v1/embeddings",
	"ollama":  "/api/embed",
}

// Embeddings calls an OpenAI-compatible (litellm) or ollama embeddings endpoint.
type Embeddings struct {
	cfg  config.EmbeddingConfig
	path string
	http fastshot.ClientHttpMethods
}

func NewEmbeddings(cfg config.EmbeddingConfig) (*Embeddings, error) {
	path, ok := embedPaths[cfg.Client]
	if !ok {
		return nil, fmt.Errorf("unsupported client: %s", cfg.Client)
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("embeddings url is empty")
	}

	c := fastshot.NewClient(cfg.URL)
	if cfg.APIKey != "" {
		c.Auth().BearerToken(cfg.APIKey)
	}

	return &Embeddings{
		cfg:  cfg,
		path: path,
		http: c.Config().SetTimeout(time.Minute).
			Config().SetFollowRedirects(true).
			Header().Add("Content-Type", "application/json").
			Build(),
	}, nil
}

func (e *Embeddings) Client() string { return e.cfg.Client }
func (e *Embeddings) Model() string  { return e.cfg.Model }

// Embed returns the embedding vector of inputText.
func (e *Embeddings) Embed(ctx context.Context, inputText string) (models.Embedding, error) {
	if inputText == "" {
		return nil, fmt.Errorf("inputText cannot be empty")
	}

	resp, err := e.http.
		POST(e.path).
		Context().Set(ctx).
		Header().Add("Accept", "application/json").
		Retry().SetExponentialBackoff(time.Second*2, 3, 2.0).
		Body().AsJSON(models.EmbeddingRequest{Model: e.cfg.Model, Input: inputText}).
		Send()
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body().Close()

	var res models.EmbeddingResponse
	if err := parseHTTPResponse(*resp, &res); err != nil {
		return nil, err
	}

	vector := res.Vector()
	if len(vector) == 0 {
		return nil, fmt.Errorf("received empty embedding from %s", e.cfg.Client)
	}
	return vector, nil
}

func parseHTTPResponse[T any](resp fastshot.Response, result *T) error {
	if resp.Status().IsError() {
		msg, err := resp.Body().AsString()
		if err != nil {
			return fmt.Errorf("failed to read error response: %w", err)
		}
		return errors.New(msg)
	}

	if err := resp.Body().AsJSON(result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
