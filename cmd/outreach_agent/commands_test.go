package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/outreach-pipeline/internal/config"
	"github.com/jonathan/outreach-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDorksCommand(t *testing.T) {
	out, err := executeCommand(t, "dorks", "--role", "founding engineer", "--location", "san francisco", "--limit", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		`site:workatastartup.com "founding engineer" "san francisco"`,
		`site:workatastartup.com "founding engineer" "san francisco" "jobs"`,
	}, lines)
}

func TestDorksCommand_RequiresRole(t *testing.T) {
	_, err := executeCommand(t, "dorks", "--role", " ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--role")
}

func TestParseQueryCommand_OfflineFallback(t *testing.T) {
	offlineEnv(t)
	parseQueryText, parseQueryJobID, parseQueryEmit, parseQueryJSON = "", "", false, false

	out, err := executeCommand(t, "parse-query", "--query", "find data engineer roles", "--job-id", "job-42", "--json")
	require.NoError(t, err)

	var q types.JobQuery
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, "job-42", q.JobID)
	assert.Equal(t, "data engineer", q.Role)
	assert.Equal(t, "remote", q.Location)
	assert.Equal(t, types.DefaultQueryLimit, q.Limit)
	assert.Equal(t, `site:workatastartup.com "data engineer" "remote"`, q.GoogleDorks[0])
}

func TestParseQueryCommand_PrintsBox(t *testing.T) {
	offlineEnv(t)
	parseQueryText, parseQueryJobID, parseQueryEmit, parseQueryJSON = "", "", false, false

	out, err := executeCommand(t, "parse-query", "--query", "find sre roles")
	require.NoError(t, err)
	assert.Contains(t, out, "PARSED JOB QUERY")
	assert.Contains(t, out, "Role:     sre")
}

func TestParseQueryCommand_MissingQuery(t *testing.T) {
	offlineEnv(t)
	parseQueryText, parseQueryJobID, parseQueryEmit, parseQueryJSON = "", "", false, false

	_, err := executeCommand(t, "parse-query", "--job-id", "j")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}

func TestParseQueryCommand_InvalidConfigFile(t *testing.T) {
	offlineEnv(t)
	parseQueryText, parseQueryJobID, parseQueryEmit, parseQueryJSON = "", "", false, false

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_level": "loud"}`), 0o644))

	_, err := executeCommand(t, "parse-query", "--config", path, "--query", "find sre roles")
	require.Error(t, err)

	var cfgErr *config.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestGenerateVariationsCommand_RequiresAPIKey(t *testing.T) {
	offlineEnv(t)
	variationsBody, variationsJobDescription, variationsEmit = "", "", false

	_, err := executeCommand(t, "generate-variations")
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "GEMINI_API_KEY", cfgErr.Field)
}

func TestWorkerCommand_RequiresSettings(t *testing.T) {
	offlineEnv(t)

	_, err := executeCommand(t, "worker")
	var cfgErr *config.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestPublishPayload(t *testing.T) {
	t.Cleanup(func() { publishQuery, publishJobID, publishLimit, publishTrigger = "", "", 0, "" })

	publishQuery, publishJobID, publishLimit, publishTrigger = "  find sre roles ", "j1", 3, ""
	topic, payload, err := publishPayload()
	require.NoError(t, err)
	assert.Equal(t, types.TopicJobQueryReceived, topic)
	q := payload.(types.QueryReceived)
	assert.Equal(t, "find sre roles", q.Query)
	require.NotNil(t, q.Limit)
	assert.Equal(t, 3, *q.Limit)

	publishQuery, publishJobID, publishLimit = "find sre roles", "", 0
	_, payload, err = publishPayload()
	require.NoError(t, err)
	q = payload.(types.QueryReceived)
	assert.NotEmpty(t, q.JobID)
	assert.Nil(t, q.Limit)

	publishQuery = ""
	_, _, err = publishPayload()
	assert.Error(t, err)

	publishTrigger = types.TopicEmailScheduleCompleted
	topic, payload, err = publishPayload()
	require.NoError(t, err)
	assert.Equal(t, types.TopicEmailScheduleCompleted, topic)
	assert.Nil(t, payload)

	publishTrigger = "email.nope"
	_, _, err = publishPayload()
	assert.Error(t, err)
}
