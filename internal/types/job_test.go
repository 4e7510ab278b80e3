package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"received to processing", JobStatusReceived, JobStatusProcessing, true},
		{"received to error", JobStatusReceived, JobStatusError, true},
		{"processing to processing", JobStatusProcessing, JobStatusProcessing, true},
		{"processing to completed", JobStatusProcessing, JobStatusCompleted, true},
		{"processing to error", JobStatusProcessing, JobStatusError, true},
		{"processing back to received", JobStatusProcessing, JobStatusReceived, false},
		{"completed is terminal", JobStatusCompleted, JobStatusError, false},
		{"error is terminal", JobStatusError, JobStatusProcessing, false},
		{"unknown source", JobStatus("PAUSED"), JobStatusProcessing, false},
		{"unknown target", JobStatusReceived, JobStatus("PAUSED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestJobPatch_IsEmpty(t *testing.T) {
	assert.True(t, JobPatch{}.IsEmpty())

	status := JobStatusProcessing
	assert.False(t, JobPatch{Status: &status}.IsEmpty())
	assert.False(t, JobPatch{GoogleDorks: []string{}}.IsEmpty())
}

func TestJobQuery_JSONFieldNames(t *testing.T) {
	q := JobQuery{
		JobID:       "job-1",
		Query:       "find founding engineer roles",
		Role:        "founding engineer",
		Location:    DefaultLocation,
		Limit:       10,
		GoogleDorks: []string{`site:workatastartup.com "founding engineer" "remote"`},
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "jobId")
	assert.Contains(t, raw, "google_dorks")
	assert.Equal(t, "remote", raw["location"])
}

func TestEmail_HasRequiredFields(t *testing.T) {
	assert.True(t, Email{ID: "e1", LeadID: "l1", Body1: "hi"}.HasRequiredFields())
	assert.False(t, Email{LeadID: "l1", Body1: "hi"}.HasRequiredFields())
	assert.False(t, Email{ID: "e1", Body1: "hi"}.HasRequiredFields())
	assert.False(t, Email{ID: "e1", LeadID: "l1"}.HasRequiredFields())
}
