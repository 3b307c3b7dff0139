package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", FormatText, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Debug("hidden")
	log.WithField("pages", 3).Info("converted")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message written at info level")
	}
	if !strings.Contains(out, "converted") || !strings.Contains(out, "pages=3") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", FormatJSON, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.WithField("mode", "ocr").Debug("page extracted")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["mode"] != "ocr" || entry["msg"] != "page extracted" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("loud", FormatText, &bytes.Buffer{}); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New("info", Format("xml"), &bytes.Buffer{}); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	// Must not panic.
	OrDiscard(nil).WithField("k", "v").Info("dropped")
}
