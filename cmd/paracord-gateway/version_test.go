package main

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "0.1.0-test"
	GitCommit = "abc123"

	tests := []struct {
		name string
		args []string
		want []string
		not  []string
	}{
		{
			name: "full",
			args: []string{"version"},
			want: []string{
				"Paracord gateway 0.1.0-test",
				"abc123",
				runtime.Version(),
				runtime.GOOS + "/" + runtime.GOARCH,
			},
		},
		{
			name: "short",
			args: []string{"version", "--short"},
			want: []string{"0.1.0-test"},
			not:  []string{"Git commit", "Paracord gateway"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("version failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, not := range tt.not {
				if strings.Contains(out, not) {
					t.Errorf("output should not contain %q:\n%s", not, out)
				}
			}
		})
	}
}

func TestVersionCommand_RejectsArgs(t *testing.T) {
	if _, err := execute(t, "version", "extra"); err == nil {
		t.Error("expected an error for an unexpected argument")
	}
}
