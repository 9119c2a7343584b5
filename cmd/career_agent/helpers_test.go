package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const sampleCatalog = "../../data/catalog.yaml"

// isolateEnv pins the environment so a developer .env cannot reach real services
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CAREER_CATALOG", "CAREER_TOP_K", "CAREER_THRESHOLD", "CAREER_LOG_MODE",
		"CAREER_WATCH_CATALOG", "GEMINI_API_KEY", "REDIS_URL", "DATABASE_URL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CAREER_EMBEDDING_PROVIDER", "hashing")
}

// execute runs the CLI in-process with fresh flag state
func execute(t *testing.T, args ...string) (stdout string, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// getBinaryPath returns the path to the career_agent binary for testing
func getBinaryPath(t *testing.T) string {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "career_agent")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/career_agent ./cmd/career_agent'", binaryPath)
	}

	return binaryPath
}
