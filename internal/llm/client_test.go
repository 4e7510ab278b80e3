package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(reason genai.FinishReason, parts ...genai.Part) *genai.Candidate {
	return &genai.Candidate{FinishReason: reason, Content: &genai.Content{Role: "model", Parts: parts}}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr error
	}{
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				candidate(genai.FinishReasonStop, genai.Text("Hi Dana, "), genai.Text("loved the launch.")),
			}},
			want: "Hi Dana, loved the launch.",
		},
		{
			name: "skips non-text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				candidate(genai.FinishReasonStop, genai.Blob{MIMEType: "image/png"}, genai.Text(`{"role": "sre"}`)),
			}},
			want: `{"role": "sre"}`,
		},
		{
			name: "truncated rewrite",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				candidate(genai.FinishReasonMaxTokens, genai.Text("Hi Dana, I wanted to")),
			}},
			wantErr: ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponseText_Empty(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"no content":    {Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}},
		"only blobs":    {Candidates: []*genai.Candidate{candidate(genai.FinishReasonStop, genai.Blob{MIMEType: "image/png"})}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := responseText(resp)
			assert.Error(t, err)
		})
	}
}

func TestProviderError(t *testing.T) {
	blocked := &genai.BlockedError{PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety}}
	assert.ErrorIs(t, providerError(blocked), ErrBlocked)

	err := providerError(context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, ErrBlocked))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: ProviderOpenAI}, "key")
	assert.ErrorContains(t, err, "unsupported")
}
