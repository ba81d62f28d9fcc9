package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestShouldUseEditor(t *testing.T) {
	tests := []struct {
		name        string
		hasFlags    bool
		edit        bool
		noEdit      bool
		interactive bool
		want        bool
	}{
		{name: "interactive without flags", interactive: true, want: true},
		{name: "not interactive", want: false},
		{name: "flags skip editor", hasFlags: true, interactive: true, want: false},
		{name: "edit forces editor", hasFlags: true, edit: true, want: true},
		{name: "no-edit wins over tty", noEdit: true, interactive: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldUseEditor(tt.hasFlags, tt.edit, tt.noEdit, tt.interactive)
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestHasChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var project string
	var estimate int
	cmd.Flags().StringVar(&project, "project", "", "")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "")

	if hasChangedFlags(cmd, "project", "estimate") {
		t.Fatal("expected no changed flags")
	}
	if err := cmd.Flags().Parse([]string{"--estimate", "3"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if !hasChangedFlags(cmd, "project", "estimate") {
		t.Fatal("expected estimate to be changed")
	}
}

func TestResolveDescriptionFromStdin(t *testing.T) {
	got, err := resolveDescriptionFromStdin("-", strings.NewReader("from stdin\n\n"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "from stdin" {
		t.Fatalf("expected trimmed stdin, got %q", got)
	}

	got, err = resolveDescriptionFromStdin("literal", strings.NewReader("ignored"))
	if err != nil || got != "literal" {
		t.Fatalf("expected literal description, got %q, %v", got, err)
	}
}
