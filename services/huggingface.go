package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const HuggingFaceBaseURL = "https://api-inference.huggingface.co"

type HuggingFaceClient struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewHuggingFaceClient(baseURL, apiKey, model string, timeout time.Duration) *HuggingFaceClient {
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.3"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &HuggingFaceClient{client: c, apiKey: apiKey, model: model}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

func (c *HuggingFaceClient) Name() string { return "huggingface" }

func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("huggingface API key not configured")
	}

	reqBody := hfRequest{
		Inputs: "[INST] " + prompt + " [/INST]",
		Parameters: hfParameters{
			MaxNewTokens:   2048,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(&reqBody).
		Post("/models/" + c.model)
	if err != nil {
		return "", fmt.Errorf("huggingface request: %w", err)
	}

	if resp.StatusCode() == http.StatusServiceUnavailable {
		return "", fmt.Errorf("AI model is loading, please retry in a few seconds")
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("HuggingFace API error (%d): %s", resp.StatusCode(), resp.String())
	}

	var hfResp hfResponse
	if err := json.Unmarshal(resp.Body(), &hfResp); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(hfResp) == 0 || strings.TrimSpace(hfResp[0].GeneratedText) == "" {
		return "", fmt.Errorf("empty response from AI")
	}
	return hfResp[0].GeneratedText, nil
}
