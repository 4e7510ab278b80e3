// Package generation isolates the pipeline from the text-generation provider.
// Stages depend on Adapter; LLMAdapter implements it over an llm.Client.
package generation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/outreach-pipeline/internal/llm"
	"github.com/jonathan/outreach-pipeline/internal/schemas"
)

// Adapter exposes structured extraction and free-text completion
type Adapter interface {
	// Extract parses input into out following schema and call-site instructions
	Extract(ctx context.Context, input string, schema llm.ExtractionSchema, instructions string, out any) error
	// Complete returns the model's free-text answer to a fully formatted prompt
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMAdapter implements Adapter on top of an llm.Client
type LLMAdapter struct {
	client       llm.Client
	extractTier  llm.ModelTier
	completeTier llm.ModelTier
}

// NewLLMAdapter creates an adapter that extracts on the standard tier and rewrites on the advanced tier
func NewLLMAdapter(client llm.Client) *LLMAdapter {
	return &LLMAdapter{
		client:       client,
		extractTier:  llm.TierStandard,
		completeTier: llm.TierAdvanced,
	}
}

// Extract implements Adapter
func (a *LLMAdapter) Extract(ctx context.Context, input string, schema llm.ExtractionSchema, instructions string, out any) error {
	prompt := llm.BuildExtractionPrompt(schema, instructions, input)

	responseText, err := a.client.GenerateJSON(ctx, prompt, a.extractTier)
	if err != nil {
		return &AdapterError{Op: "extract", Message: "model call failed", Cause: err}
	}
	responseText = llm.CleanJSONBlock(responseText)

	if schema.JSONSchema != "" {
		if err := schemas.ValidateJSONString(schema.JSONSchema, responseText); err != nil {
			return &AdapterError{Op: "extract", Message: "response does not match " + schema.Name + " schema", Cause: err}
		}
	}

	if err := json.Unmarshal([]byte(responseText), out); err != nil {
		return &AdapterError{Op: "extract", Message: "failed to decode " + schema.Name, Cause: err}
	}
	return nil
}

// Complete implements Adapter
func (a *LLMAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := a.client.GenerateContent(ctx, prompt, a.completeTier)
	if err != nil {
		return "", &AdapterError{Op: "complete", Message: "model call failed", Cause: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &AdapterError{Op: "complete", Message: "model returned empty text"}
	}
	return text, nil
}

// JobQuerySchema returns the extraction schema for free-text job search requests
func JobQuerySchema() llm.ExtractionSchema {
	return llm.ExtractionSchema{
		Name:        "JobQuery",
		Description: "You are an expert at reading job search requests. Identify what role the user is looking for and where.",
		Fields: []llm.SchemaField{
			{
				Name:        "role",
				Type:        "\"string\"",
				Description: "Job role or title being searched for, lowercase, without filler words",
				Required:    true,
			},
			{
				Name:        "location",
				Type:        "\"string\"",
				Description: "Location preference; \"remote\" when none is stated",
				Required:    false,
			},
		},
		JSONSchema: schemas.MustGet(schemas.JobQuery),
	}
}

// DorkListSchema returns the extraction schema for model-generated search terms
func DorkListSchema() llm.ExtractionSchema {
	return llm.ExtractionSchema{
		Name:        "DorkList",
		Description: "You write precise Google search queries that surface live job listings.",
		Fields: []llm.SchemaField{
			{
				Name:        "dorks",
				Type:        "[\"string\"]",
				Description: "Google-ready search queries, best first",
				Required:    true,
			},
		},
		JSONSchema: schemas.MustGet(schemas.DorkList),
	}
}
