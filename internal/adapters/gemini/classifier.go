package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/secureguard/phishguard/internal/utils"
)

const promptFormat = `You are a phishing detection system. Analyze the following email text and estimate the probability that it is a phishing attempt.
Respond with a JSON object containing:
- score: number between 0 and 1 (higher means more likely phishing)
- explanation: string (brief explanation of the language patterns you found)

Text:
%s

Respond only with the JSON object and nothing else.`

// scoreResponse represents the structured response from the LLM
type scoreResponse struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Classifier is a ContentClassifier backed by Google Gemini
type Classifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifier creates a new Gemini-backed classifier
func NewClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Classifier, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Classifier{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *Classifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Score estimates the phishing probability of the text via Gemini
func (c *Classifier) Score(ctx context.Context, text string) (float64, error) {
	sanitized := c.textProcessor.SanitizeUTF8(text)
	prompt := fmt.Sprintf(promptFormat, c.textProcessor.TruncateText(sanitized, c.maxBodySize))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return 0, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return 0, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	parsed, err := parseScoreResponse(responseText)
	if err != nil {
		return 0, err
	}

	c.logger.Debug("Gemini classifier verdict",
		zap.Float64("score", parsed.Score),
		zap.String("model", c.modelName))

	return clamp(parsed.Score), nil
}

// parseScoreResponse decodes the LLM's JSON reply, tolerating surrounding
// prose by extracting the outermost JSON object
func parseScoreResponse(responseText string) (*scoreResponse, error) {
	var parsed scoreResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}
	if jsonStart < 0 || jsonStart >= jsonEnd {
		return nil, fmt.Errorf("failed to extract JSON from LLM response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &parsed, nil
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
