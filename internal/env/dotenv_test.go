package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	content := "GROQ_API_KEY=gsk_test\n# comment\nexport MONGODB_CONNECTION_STRING=\"mongodb://db:27017/\"\nLOG_LEVEL=debug # verbose\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("GROQ_API_KEY", "")
	_ = os.Unsetenv("GROQ_API_KEY")
	t.Setenv("MONGODB_CONNECTION_STRING", "")
	_ = os.Unsetenv("MONGODB_CONNECTION_STRING")
	t.Setenv("LOG_LEVEL", "")
	_ = os.Unsetenv("LOG_LEVEL")

	if err := LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}

	want := map[string]string{
		"GROQ_API_KEY":              "gsk_test",
		"MONGODB_CONNECTION_STRING": "mongodb://db:27017/",
		"LOG_LEVEL":                 "debug",
	}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Fatalf("expected %s=%q, got %q", k, v, got)
		}
	}
}

func TestLoadDoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GOOGLE_API_KEY=from-file\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("GOOGLE_API_KEY", "existing")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := os.Getenv("GOOGLE_API_KEY"); got != "existing" {
		t.Fatalf("expected existing value preserved, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadUnreadablePath(t *testing.T) {
	if err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected an error when the path is a directory")
	}
}
