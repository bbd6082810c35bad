// Package gemini implements the semantic similarity provider on top of
// Google Gemini embeddings. It is a collaborator implementation: the scoring
// engine only sees the semantic.Provider interface and survives any failure
// here with a zero delta.
package gemini

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultEmbeddingModel = "text-embedding-004"

// Provider embeds the candidate interest text once and compares each job
// text against it by cosine similarity, mapped into [0, 1].
type Provider struct {
	client *genai.Client
	model  string

	embedFn func(ctx context.Context, text string) ([]float32, error)

	profileText string
	profileMu   sync.Mutex
	profileVec  []float32
}

// New creates a Gemini-backed provider. profileText is the candidate
// interest statement jobs are compared against.
func New(ctx context.Context, apiKey, profileText string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p := &Provider{
		client:      client,
		model:       defaultEmbeddingModel,
		profileText: profileText,
	}
	p.embedFn = p.embed
	return p, nil
}

// Similarity implements semantic.Provider.
func (p *Provider) Similarity(ctx context.Context, text string) (float64, error) {
	profile, err := p.profileEmbedding(ctx)
	if err != nil {
		return 0, err
	}
	jobVec, err := p.embedFn(ctx, text)
	if err != nil {
		return 0, err
	}
	cos, err := cosine(profile, jobVec)
	if err != nil {
		return 0, err
	}
	// Map [-1, 1] cosine into [0, 1].
	return (cos + 1) / 2, nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// profileEmbedding memoizes the profile vector on success only. A failed
// attempt (timeout, transport error) is retried on the next call rather than
// poisoning the semantic path for the rest of the process.
func (p *Provider) profileEmbedding(ctx context.Context) ([]float32, error) {
	p.profileMu.Lock()
	defer p.profileMu.Unlock()

	if p.profileVec != nil {
		return p.profileVec, nil
	}
	vec, err := p.embedFn(ctx, p.profileText)
	if err != nil {
		return nil, err
	}
	p.profileVec = vec
	return vec, nil
}

func (p *Provider) embed(ctx context.Context, text string) ([]float32, error) {
	em := p.client.EmbeddingModel(p.model)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response is empty")
	}
	return resp.Embedding.Values, nil
}

func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("malformed embedding: dimension mismatch (%d vs %d)", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("malformed embedding: zero vector")
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(cos) {
		return 0, fmt.Errorf("malformed embedding: NaN similarity")
	}
	return cos, nil
}
