package plagiarism

import (
	"context"
	"encoding/json"

	"google.golang.org/genai"

	"judgecore/pkg/utils/logger"
)

// Normalizer canonicalizes source code before embedding: strips comments and
// blank lines, renames identifiers/literals to placeholders, sorts imports.
// Grounded on original_source/.../utils/code_normalizer.py.
type Normalizer interface {
	Normalize(ctx context.Context, code string) (string, error)
}

const normalizationPrompt = `You are a code canonicalizer. Given any source code string, return the same code:
- Remove all comments (line, inline, block)
- Remove unnecessary blank lines (collapse multiple blank lines to a single one)
- Replace all variable names with placeholders (e.g., VAR_1, VAR_2)
- Replace all function names with placeholders (e.g., FUNC_1, FUNC_2)
- Replace all class names with placeholders (e.g., CLASS_1, CLASS_2)
- Replace all numeric literals with NUM_1, NUM_2... and string literals with STR_1, STR_2...
- Normalize spacing and indentation
- Normalize equivalent syntax forms (e.g., a = a + 1 -> a += 1, if (x == true) -> if (x))
- Sort import/include statements alphabetically
- Reorder top-level function definitions in a consistent order (e.g., alphabetically)
Only return the final cleaned code as JSON in the field 'code'`

var normalizationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"code": map[string]any{"type": "string"},
	},
	"required": []string{"code"},
}

// GeminiNormalizer canonicalizes code through a genai structured-output
// call, grounded on normalize_code_with_gemini / query_gemini_structured and
// the pack's google.golang.org/genai usage in vvoland-cagent's gemini
// provider (GenerateContent with ResponseJsonSchema).
type GeminiNormalizer struct {
	client *genai.Client
	model  string
}

// NewGeminiNormalizer builds a GeminiNormalizer. client may be nil, in
// which case Normalize always falls back to returning the raw code.
func NewGeminiNormalizer(client *genai.Client, model string) *GeminiNormalizer {
	return &GeminiNormalizer{client: client, model: model}
}

// Normalize calls the model and falls back to the raw code on any failure,
// matching normalize_code_with_gemini's "return result.code if result else
// raw_code".
func (n *GeminiNormalizer) Normalize(ctx context.Context, code string) (string, error) {
	if n == nil || n.client == nil {
		return code, nil
	}

	prompt := normalizationPrompt + "\n\n### Raw code:\n" + code + "\n### Cleaned output as JSON:"
	content := genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser)
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: normalizationSchema,
	}

	resp, err := n.client.Models.GenerateContent(ctx, n.model, []*genai.Content{content}, cfg)
	if err != nil {
		logger.Warnf(ctx, "normalize: gemini request failed, falling back to raw code: %v", err)
		return code, nil
	}

	text := extractText(resp)
	if text == "" {
		return code, nil
	}
	var parsed struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed.Code == "" {
		return code, nil
	}
	return parsed.Code, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}
