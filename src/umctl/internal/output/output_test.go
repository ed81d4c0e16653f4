package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
)

// captureStdout captures stdout output during fn execution
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

// =============================================================================
// PrintJSON Tests
// =============================================================================

func TestPrintJSON_Map(t *testing.T) {
	data := map[string]string{"key": "value"}
	out := captureStdout(t, func() {
		if err := PrintJSON(data); err != nil {
			t.Fatalf("PrintJSON error: %v", err)
		}
	})
	var result map[string]string
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if result["key"] != "value" {
		t.Errorf("expected key=value, got %v", result)
	}
}

func TestPrintJSON_Indented(t *testing.T) {
	data := map[string]string{"key": "value"}
	out := captureStdout(t, func() {
		_ = PrintJSON(data)
	})
	if !strings.Contains(out, "  ") {
		t.Error("expected indented JSON output")
	}
}

// =============================================================================
// PrintTable Tests
// =============================================================================

func TestPrintTable_BasicOutput(t *testing.T) {
	out := captureStdout(t, func() {
		PrintTable(
			[]string{"ID", "EMAIL"},
			[][]string{
				{"1", "alice@example.com"},
				{"2", "bob@example.com"},
			},
		)
	})
	if !strings.Contains(out, "ID") || !strings.Contains(out, "EMAIL") {
		t.Errorf("expected headers in output, got %q", out)
	}
	if !strings.Contains(out, "alice@example.com") || !strings.Contains(out, "bob@example.com") {
		t.Errorf("expected row data in output, got %q", out)
	}
}

func TestPrintTable_EmptyRows(t *testing.T) {
	out := captureStdout(t, func() {
		PrintTable([]string{"ID", "EMAIL"}, [][]string{})
	})
	// Should still print headers
	if !strings.Contains(out, "ID") {
		t.Errorf("expected headers even with empty rows, got %q", out)
	}
}

func TestPrintTable_Alignment(t *testing.T) {
	out := captureStdout(t, func() {
		PrintTable(
			[]string{"ID", "NAME"},
			[][]string{
				{"1", "short"},
				{"100", "a much longer name"},
			},
		)
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 lines (header + 2 rows), got %d", len(lines))
	}
}

// =============================================================================
// PrintMessage / PrintError Tests
// =============================================================================

func TestPrintMessage(t *testing.T) {
	out := captureStdout(t, func() {
		PrintMessage("hello world")
	})
	if strings.TrimSpace(out) != "hello world" {
		t.Errorf("expected 'hello world', got %q", out)
	}
}

func TestPrintError(t *testing.T) {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	PrintError(fmt.Errorf("test error"))

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	if !strings.Contains(buf.String(), "test error") {
		t.Errorf("expected error message on stderr, got %q", buf.String())
	}
}
