package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/ban2lab/longanicore-gateway/internal/metrics"
)

const (
	geminiAPIURL  = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiTimeout = 30 * time.Second
)

// GeminiTranslator calls the Gemini generateContent API with search
// grounding to produce research-backed translations.
type GeminiTranslator struct {
	apiKey     string
	model      string
	httpClient *http.Client
	enabled    bool
}

// geminiRequest is the request body for the generateContent API.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch struct{} `json:"googleSearch"`
}

const translationPrompt = `You are an expert linguist and translator specializing in Mozambican Bantu languages, assisted by a powerful research AI. Your task is to provide the most accurate, culturally-aware, and contextually-rich translation possible, complete with a pronunciation guide.

To achieve this, you will follow a two-step process:

**Step 1: Background Research (Internal Monologue)**
First, you must use your research capabilities (Google Search) to find relevant linguistic resources (dictionaries, grammars, corpora, articles) that can help you understand the nuances of the languages and the context of the text to be translated. Focus on the specific languages involved: %[1]s and %[2]s.

**Step 2: High-Fidelity Translation & Phonetics**
Using the knowledge gathered from your research, translate the user's text. The translation must be natural, fluent, and preserve cultural nuances. Crucially, you must also provide a phonetic pronunciation guide for the translated text using the International Phonetic Alphabet (IPA). For Bantu languages, pay special attention to tones (if applicable), click consonants, and vowel length, representing them accurately in the IPA string.

**User's Request:**

- **Source Language:** %[1]s
- **Target Language:** %[2]s
- **Text to Translate:** "%[3]s"

**Output Format:**

You MUST return your response as a single, valid JSON object and nothing else. Do not include any text, explanations, or markdown formatting (like ` + "```json" + `) before or after the JSON object.

The JSON object must have the following structure:
{
  "translation": "The translated text goes here.",
  "pronunciation": "The IPA phonetic guide for the translation (e.g., /fəˈnɛtɪk/). This should be null if a guide is not possible or irrelevant.",
  "sources": [
    {
      "title": "Title of the web source",
      "uri": "URL of the web source"
    }
  ]
}

If a translation is not possible or the text is nonsensical, the "translation" field should contain "Translation not available", and the "pronunciation" field should be null. The "sources" field can be an empty array ([]) if no relevant sources were found.

Now, perform the research and translation for the user's request.`

// NewGeminiTranslator creates the Gemini translation collaborator.
// An empty API key leaves the translator disabled.
func NewGeminiTranslator(apiKey, model string) *GeminiTranslator {
	svc := &GeminiTranslator{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: geminiTimeout},
		enabled:    apiKey != "",
	}

	if svc.enabled {
		logrus.Infof("Gemini translator: enabled (model=%s)", model)
	} else {
		logrus.Info("Gemini translator: disabled (no API key)")
	}

	return svc
}

// IsEnabled reports whether the translator can reach Gemini.
func (s *GeminiTranslator) IsEnabled() bool {
	return s.enabled
}

// Translate produces a translation with pronunciation and sources.
// The response must parse into the expected shape; anything else is an
// error so callers never cache malformed upstream output.
func (s *GeminiTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	if !s.enabled {
		return nil, fmt.Errorf("translation service not enabled")
	}

	startTime := time.Now()

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf(translationPrompt, sourceLang, targetLang, text)}}},
		},
		Tools: []geminiTool{{}},
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(geminiAPIURL, s.model) + "?key=" + s.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.GeminiAPILatency.Observe(time.Since(startTime).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		logrus.Debugf("Gemini API error: status=%d body=%s", resp.StatusCode, truncate(string(body), 500))
		return nil, fmt.Errorf("translation API returned status %d", resp.StatusCode)
	}

	modelText := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	if modelText == "" {
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		return nil, fmt.Errorf("empty response from translation service")
	}

	result, err := parseResult(modelText)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		logrus.Debugf("Failed to parse Gemini response: %v (text=%s)", err, truncate(modelText, 200))
		return nil, err
	}

	logrus.Debugf("Translated %q (%s -> %s) in %v", truncate(text, 50), sourceLang, targetLang, time.Since(startTime))
	return result, nil
}

// parseResult strictly parses the model's JSON output into a Result.
// Markdown code fences around the JSON are tolerated.
func parseResult(modelText string) (*Result, error) {
	cleaned := strings.TrimSpace(modelText)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("received an invalid response format from the translation service")
	}
	if result.Translation == "" {
		return nil, fmt.Errorf("received an invalid response format from the translation service")
	}
	if result.Sources == nil {
		result.Sources = []Source{}
	}
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
