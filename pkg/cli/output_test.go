package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "text", want: FormatText},
		{input: "JSON", want: FormatJSON},
		{input: " json ", want: FormatJSON},
		{input: "csv", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrinter(t *testing.T) {
	type report struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	tests := []struct {
		name   string
		format OutputFormat
		data   any
		check  func(t *testing.T, out string)
	}{
		{
			name:   "text",
			format: FormatText,
			data:   "certificate written",
			check: func(t *testing.T, out string) {
				if out != "certificate written\n" {
					t.Errorf("Print() = %q, want %q", out, "certificate written\n")
				}
			},
		},
		{
			name:   "unknown format falls back to text",
			format: "yaml",
			data:   42,
			check: func(t *testing.T, out string) {
				if out != "42\n" {
					t.Errorf("Print() = %q, want %q", out, "42\n")
				}
			},
		},
		{
			name:   "json",
			format: FormatJSON,
			data:   report{Name: "cert", Value: 3},
			check: func(t *testing.T, out string) {
				var got report
				if err := json.Unmarshal([]byte(out), &got); err != nil {
					t.Fatalf("Print() produced invalid JSON: %v", err)
				}
				if got.Name != "cert" || got.Value != 3 {
					t.Errorf("Print() decoded = %+v", got)
				}
				if !strings.Contains(out, "\n  \"name\"") {
					t.Errorf("Print() output is not indented: %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := NewPrinter(tt.format, buf).Print(tt.data); err != nil {
				t.Fatalf("Print() error = %v", err)
			}
			tt.check(t, buf.String())
		})
	}
}

func TestFields(t *testing.T) {
	fields := Fields{
		{Label: "Subject", Value: "CN=localhost"},
		{Label: "Self-signed", Value: "yes"},
	}

	lines := strings.Split(fields.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("String() produced %d lines, want 2: %q", len(lines), fields.String())
	}
	if lines[0] != "Subject:      CN=localhost" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Self-signed:  yes" {
		t.Errorf("line 1 = %q", lines[1])
	}

	buf := &bytes.Buffer{}
	if err := NewPrinter(FormatText, buf).Print(fields); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Subject:") {
		t.Errorf("text output did not use String(): %q", buf.String())
	}
}
