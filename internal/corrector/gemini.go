package corrector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/caption-extract/internal/logger"
)

const revisePrompt = `You are proofreading an automatic transcript of a video. The draft below came from subtitles, OCR or speech recognition.

Rules:
- Fix homophone and recognition errors using the surrounding context
- Add or fix punctuation in the language of the text
- Keep the paragraph breaks (blank lines) of the draft; you may split an overly long paragraph
- Do not summarize, translate, reorder or add commentary
- Keep these terms exactly as written: %s
- Reply with the corrected text only

Draft:
---
%s
---`

// generateFunc sends one prompt with one API key.
type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

type geminiReviser struct {
	apiKeys  []string
	model    string
	terms    []string
	generate generateFunc
	logger   logger.Logger

	mu         sync.Mutex
	currentKey int
}

// NewGemini creates a Reviser backed by the Gemini API. It rotates through
// apiKeys on rate limit and quota errors. terms are passed to the model as
// spellings it must keep.
func NewGemini(apiKeys []string, model string, terms []string, log logger.Logger) Reviser {
	return newGemini(apiKeys, model, terms, generateContent, log)
}

func newGemini(apiKeys []string, model string, terms []string, gen generateFunc, log logger.Logger) *geminiReviser {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &geminiReviser{
		apiKeys:  apiKeys,
		model:    model,
		terms:    terms,
		generate: gen,
		logger:   log,
	}
}

func (g *geminiReviser) Name() string {
	return "gemini:" + g.model
}

// Revise sends the draft to Gemini, trying each key at most once.
func (g *geminiReviser) Revise(ctx context.Context, draft string) (string, error) {
	if len(g.apiKeys) == 0 {
		return "", errors.New("no Gemini API keys configured")
	}

	terms := "(none)"
	if len(g.terms) > 0 {
		terms = strings.Join(g.terms, ", ")
	}
	prompt := fmt.Sprintf(revisePrompt, terms, draft)

	var lastErr error
	for range len(g.apiKeys) {
		idx, key := g.key()
		text, err := g.generate(ctx, key, g.model, prompt)
		if err != nil {
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return "", errors.New("empty response from Gemini")
		}
		return text, nil
	}
	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *geminiReviser) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey moves past idx unless another caller already did.
func (g *geminiReviser) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateContent(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
