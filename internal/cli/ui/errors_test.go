package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "component not found",
				Problem: "flow-x",
			},
			contains: []string{"❌", "COMPONENT NOT FOUND: flow-x"},
			excludes: []string{"Did you mean", "→"},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Problem:     "flow-buton",
				Suggestions: []string{"flow-button", "flow-icon"},
			},
			contains: []string{"Did you mean: flow-button, flow-icon?"},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Problem:      "bad",
				HelpCommands: []string{"Run: flow-helper catalog validate"},
			},
			contains: []string{"→ Run: flow-helper catalog validate"},
		},
		{
			name: "warning",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "no config file",
			},
			contains: []string{"⚠️", "no config file"},
			excludes: []string{"❌"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			result := FormatError(tt.opts)

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, result)
				}
			}
			for _, unexpected := range tt.excludes {
				if strings.Contains(result, unexpected) {
					t.Errorf("expected output not to contain %q, got:\n%s", unexpected, result)
				}
			}
		})
	}
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "catalog is valid", true)

	if got := buf.String(); got != "✓ catalog is valid\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestComponentNotFoundError(t *testing.T) {
	result := ComponentNotFoundError("flow-buton", []string{"flow-button"}, true)

	for _, expected := range []string{"COMPONENT NOT FOUND: flow-buton", "Did you mean: flow-button?", "flow-helper catalog list"} {
		if !strings.Contains(result, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, result)
		}
	}
}

func TestCatalogError(t *testing.T) {
	result := CatalogError("", errors.New("malformed catalog: bad"), true)
	if !strings.Contains(result, "INVALID CATALOG: built-in catalog: malformed catalog: bad") {
		t.Errorf("unexpected output:\n%s", result)
	}

	result = CatalogError("tags.yaml", errors.New("boom"), true)
	if !strings.Contains(result, "tags.yaml: boom") {
		t.Errorf("unexpected output:\n%s", result)
	}
}

func TestWarning(t *testing.T) {
	if result := Warning("careful", true); !strings.Contains(result, "⚠️ careful") {
		t.Errorf("unexpected output %q", result)
	}
}
