package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobboard/internal/config"
	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/validation"
)

var (
	ErrExtractionDisabled = errors.New("job extraction is not configured")
	ErrMalformedDraft     = errors.New("model returned a malformed job draft")
)

// maxExtractionInput bounds the page text sent to the model.
const maxExtractionInput = 20000

type LLMService struct {
	// Nil when no API key is configured.
	Client llms.Model
	schema validation.Schema
}

// NewLLMService initializes the Gemini client. Without GEMINI_API_KEY the
// service is created disabled and extraction requests fail with
// ErrExtractionDisabled.
func NewLLMService(ctx context.Context, cfg config.Config, schema validation.Schema, log *zap.Logger) (*LLMService, error) {
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is empty, job extraction disabled")
		return NewLLMServiceWithModel(nil, schema), nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.GeminiAPIKey),
		googleai.WithDefaultModel(cfg.GeminiModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewLLMServiceWithModel(llm, schema), nil
}

// NewLLMServiceWithModel wraps an existing model. A nil model disables extraction.
func NewLLMServiceWithModel(model llms.Model, schema validation.Schema) *LLMService {
	return &LLMService{Client: model, schema: schema}
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_range": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails takes raw HTML and returns a validated draft.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.JobDraft, error) {
	if s == nil || s.Client == nil {
		return nil, ErrExtractionDisabled
	}
	if len(rawHTML) > maxExtractionInput {
		rawHTML = rawHTML[:maxExtractionInput]
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobExtractionPrompt, rawHTML), llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("extract job details: %w", err)
	}

	var draft dtos.JobDraft
	if err := json.Unmarshal([]byte(stripFences(resp)), &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	draft.TechStack = cleanList(draft.TechStack)
	if err := validation.Validate(s.schema, &draft); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDraft, err)
	}
	return &draft, nil
}

// stripFences removes a ```json ... ``` wrapper models add despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
