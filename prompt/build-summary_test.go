package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/bitrise-plugins-build-summary/ci"
	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	content := "Summarize the build.\n  Keep it short.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write prompt: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != content {
		t.Errorf("Expected prompt to be read verbatim, got %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("Expected an error for a missing prompt file")
	}
	if common.KindOf(err) != common.KindPromptLoad {
		t.Errorf("Expected prompt load error, got %s", common.KindOf(err))
	}
}

func TestGetBuildSummaryPrompt(t *testing.T) {
	got := GetBuildSummaryPrompt("BASE", "failure", "(none)")
	want := "BASE\n\nOutcome: failure\n\nError/Context:\n(none)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestBuildRequest(t *testing.T) {
	cfg := ci.Config{
		Endpoint:   "https://example.openai.azure.com",
		Deployment: "gpt-4o",
		APIKey:     "key",
		Status:     "success",
		Context:    "all green <b>\"quoted\"</b>",
	}
	settings := common.WithDefaultSettings()

	req := BuildRequest(cfg, "Explain the outcome.", settings)

	if req.SystemPrompt != "You are an expert CI assistant." {
		t.Errorf("Unexpected system prompt: %s", req.SystemPrompt)
	}
	wantUser := "Explain the outcome.\n\nOutcome: success\n\nError/Context:\nall green <b>\"quoted\"</b>"
	if req.UserPrompt != wantUser {
		t.Errorf("Expected user prompt %q, got %q", wantUser, req.UserPrompt)
	}
	if req.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", req.Temperature)
	}
}
