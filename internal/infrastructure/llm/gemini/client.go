// Package gemini adapts Google's Gemini API to the model and embedder ports.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/infrastructure/resilience"
)

const (
	defaultGenModel   = "gemini-2.5-flash"
	defaultEmbedModel = "models/text-embedding-004"
	defaultEmbedDim   = 768
)

type Config struct {
	APIKey     string
	GenModel   string
	EmbedModel string
	EmbedDim   int

	// Optional; calls run unguarded when nil.
	Executor *resilience.Executor
}

type Client struct {
	genai      *genai.Client
	genModel   string
	embedModel string
	embedDim   int
	executor   *resilience.Executor
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.GenModel == "" {
		cfg.GenModel = defaultGenModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbedModel
	}
	if cfg.EmbedDim <= 0 {
		cfg.EmbedDim = defaultEmbedDim
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		genai:      client,
		genModel:   cfg.GenModel,
		embedModel: cfg.EmbedModel,
		embedDim:   cfg.EmbedDim,
		executor:   cfg.Executor,
	}, nil
}

func (c *Client) generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.Text(systemPrompt)[0]
	}

	var text string
	call := func(ctx context.Context) error {
		resp, err := c.genai.Models.GenerateContent(ctx, c.genModel, genai.Text(userPrompt), cfg)
		if err != nil {
			return fmt.Errorf("gemini generate: %w", err)
		}
		if resp == nil {
			return errors.New("empty gemini response")
		}
		text = strings.TrimSpace(resp.Text())
		if text == "" {
			return errors.New("gemini returned empty text")
		}
		return nil
	}

	if err := c.execute(ctx, "gemini.generate", call); err != nil {
		return "", wrapTemporaryIfNeeded("gemini generate", err)
	}
	return text, nil
}

func (c *Client) execute(ctx context.Context, operation string, call func(context.Context) error) error {
	if c.executor != nil {
		return c.executor.Execute(ctx, operation, call, classifyGeminiError)
	}
	return call(ctx)
}

// Embedder implements the embedder port on top of the shared client.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.Text(t)[0])
	}

	var vectors [][]float32
	call := func(ctx context.Context) error {
		resp, err := e.client.genai.Models.EmbedContent(
			ctx,
			e.client.embedModel,
			contents,
			&genai.EmbedContentConfig{
				OutputDimensionality: genai.Ptr(int32(e.client.embedDim)),
			},
		)
		if err != nil {
			return fmt.Errorf("gemini embed: %w", err)
		}
		if len(resp.Embeddings) != len(texts) {
			return fmt.Errorf("embeddings/texts mismatch: %d/%d", len(resp.Embeddings), len(texts))
		}
		vectors = make([][]float32, len(resp.Embeddings))
		for i, emb := range resp.Embeddings {
			vec := make([]float32, len(emb.Values))
			for j, v := range emb.Values {
				vec[j] = float32(v)
			}
			vectors[i] = vec
		}
		return nil
	}

	if err := e.client.execute(ctx, "gemini.embed", call); err != nil {
		return nil, wrapTemporaryIfNeeded("gemini embed", err)
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("empty embedding result")
	}
	return vectors[0], nil
}

func (e *Embedder) Dimension() int {
	return e.client.embedDim
}

// ModelClient implements the generative port: intent classification, query
// rewriting and grounded answer generation.
type ModelClient struct {
	client *Client
}

func NewModelClient(client *Client) *ModelClient {
	return &ModelClient{client: client}
}

func (m *ModelClient) ClassifyIntent(ctx context.Context, question string) (string, error) {
	raw, err := m.client.generate(ctx, intentSystemPrompt, buildIntentPrompt(question), 0.3)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return domain.IntentOther, nil
	}
	return fields[0], nil
}

func (m *ModelClient) RewriteQuery(ctx context.Context, question, intent string) (string, error) {
	raw, err := m.client.generate(ctx, rewriteSystemPrompt, buildRewritePrompt(question, intent), 0.5)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (m *ModelClient) GenerateAnswer(ctx context.Context, question, userContext string, evidence []domain.ScoredResult) (domain.ModelAnswer, error) {
	system := answerSystemPrompt + answerLanguageHint(question)
	raw, err := m.client.generate(ctx, system, buildAnswerPrompt(question, userContext, evidence), 0.7)
	if err != nil {
		return domain.ModelAnswer{}, err
	}
	return parseModelAnswer(raw), nil
}
