package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	modelName = "gemini-1.5-flash"

	// DefaultUrgency is substituted whenever the model returns a missing or
	// malformed urgency value.
	DefaultUrgency = 3

	maxPromptRunes = 6000
)

// Analysis is the structured result of analyzing one article.
type Analysis struct {
	Title     string   // translated headline
	Summary   []string // three bullet points
	Impact    string   // one-sentence impact statement
	Tag       string   // one-word category
	Urgency   int      // 1..10
	Sentiment float64  // -1.0..1.0
}

type Client struct {
	client *genai.Client
}

func NewClient(apiKey string) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

const promptTemplate = `You are a news analyst for a monitoring service tracking Iran-related events.

ARTICLE:
Headline: %s
Body: %s

TASKS:
1. Translate the headline to Persian, naturally (keep proper names untranslated).
2. Summarize the article in exactly 3 short bullet points.
3. Write one sentence describing the likely impact.
4. Pick ONE category word: nuclear, military, social, economy or politics.
5. Rate urgency on a 1-10 integer scale (10 = immediate crisis).
6. Rate sentiment from -1.0 (very negative) to 1.0 (very positive).

Respond with ONLY this JSON, no other text:
{
  "title_fa": "translated headline",
  "summary": ["point one", "point two", "point three"],
  "impact": "one sentence",
  "tag": "category",
  "urgency": 5,
  "sentiment": 0.0
}`

// Analyze sends the headline and body text to Gemini and parses the
// structured result. An unparsable response is an error; the caller's retry
// policy counts it as a failed attempt.
func (c *Client) Analyze(ctx context.Context, headline, body string) (*Analysis, error) {
	model := c.client.GenerativeModel(modelName)

	body = truncateOnSentence(collapseWhitespace(body), maxPromptRunes)
	prompt := fmt.Sprintf(promptTemplate, headline, body)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return parseAnalysis(text)
}

// parseAnalysis turns the raw model output into an Analysis. Markdown code
// fences are stripped first; models wrap JSON in them no matter how firmly
// the prompt forbids it. Missing title or summary fails the parse, everything
// else is coerced to a valid value.
func parseAnalysis(text string) (*Analysis, error) {
	text = stripCodeFences(text)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	a := &Analysis{
		Title:     SanitizeText(stringField(raw, "title_fa")),
		Impact:    SanitizeText(stringField(raw, "impact")),
		Tag:       strings.ToLower(strings.TrimSpace(stringField(raw, "tag"))),
		Urgency:   coerceUrgency(raw["urgency"]),
		Sentiment: coerceSentiment(raw["sentiment"]),
	}

	if arr, ok := raw["summary"].([]any); ok {
		for _, v := range arr {
			if s, ok := v.(string); ok {
				if s = SanitizeText(s); s != "" {
					a.Summary = append(a.Summary, s)
				}
			}
		}
	}

	if a.Title == "" || len(a.Summary) == 0 {
		return nil, fmt.Errorf("missing required fields (title=%t summary=%d)", a.Title != "", len(a.Summary))
	}
	return a, nil
}

func stringField(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// coerceUrgency accepts a JSON number or a numeric string and clamps to 1..10.
// Anything else (including words like "high") degrades to DefaultUrgency.
func coerceUrgency(v any) int {
	var n int
	switch val := v.(type) {
	case float64:
		n = int(val)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return DefaultUrgency
		}
		n = parsed
	default:
		return DefaultUrgency
	}

	if n < 1 || n > 10 {
		return DefaultUrgency
	}
	return n
}

func coerceSentiment(v any) float64 {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	if f < -1 {
		return -1
	}
	if f > 1 {
		return 1
	}
	return f
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\r", "")), " ")
}

// truncateOnSentence cuts s to at most max runes, preferring a sentence
// boundary when one exists reasonably deep into the text.
func truncateOnSentence(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	trimmed := string(runes[:max])
	if idx := strings.LastIndex(trimmed, ". "); idx > max/4 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}
