package drivers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFSDriver_SaveAndGet(t *testing.T) {
	tempDir := t.TempDir()

	driver, err := NewLocalFSDriver(tempDir)
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	ctx := context.Background()
	key := "current-rate/2024/03/01/abc.json"
	content := []byte(`{"data":[]}`)

	if err := driver.Save(ctx, key, bytes.NewReader(content), "application/json"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fullPath := filepath.Join(tempDir, "current-rate", "2024", "03", "01", "abc.json")
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		t.Errorf("file not found at expected path: %s", fullPath)
	}

	reader, contentType, err := driver.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer reader.Close()

	if contentType != "application/json" {
		t.Errorf("expected content type application/json, got %s", contentType)
	}

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestLocalFSDriver_RejectsEscapingKeys(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	for _, key := range []string{"../outside.json", "a/../../outside.json", "/etc/passwd", ""} {
		if err := driver.Save(context.Background(), key, bytes.NewReader(nil), "application/json"); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestLocalFSDriver_GetMissing(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}
	if _, _, err := driver.Get(context.Background(), "missing.json"); err == nil {
		t.Error("expected error for missing key")
	}
}
