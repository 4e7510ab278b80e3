package main

import (
	"bytes"
	"os"
	"testing"
)

// executeCommand runs the root command in-process and returns its stdout
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// offlineEnv clears every setting that would reach an external service
func offlineEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "GEMINI_API_KEY", "GENERATION_MODEL", "SMART_DORKS", "HANDLER_TIMEOUT", "NATS_URL", "NATS_QUEUE", "EMAIL_READY_STATUS", "LOG_LEVEL", "METRICS_ADDR"} {
		// Setenv registers the restore; envconfig rejects set-but-empty bools and durations
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	configPath = ""
}
