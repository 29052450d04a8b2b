package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/futig/studyroom-rag/internal/entity"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := map[string]bool{"vectorize": false, "context": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	flag := cmd.PersistentFlags().Lookup("env")
	if flag == nil || flag.DefValue != "local" {
		t.Fatalf("--env flag = %+v", flag)
	}
}

// Flag validation runs before configuration is loaded, so these never touch a database.
func TestCommands_RejectInvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"vectorize without room", []string{"vectorize", "--path", "a.txt"}, "required field is missing"},
		{"vectorize bad room", []string{"vectorize", "--room", "nope", "--path", "a.txt"}, "must be a UUID"},
		{"vectorize without path", []string{"vectorize", "--room", "6f1c2b9e-0a57-4a43-9a59-2f8a6a1c0d11"}, "--path is required"},
		{"context without scope", []string{"context", "--topic", "x"}, "either --room or --file"},
		{"context bad file", []string{"context", "--file", "nope"}, "must be a UUID"},
		{"context out without format", []string{"context", "--room", "6f1c2b9e-0a57-4a43-9a59-2f8a6a1c0d11", "--out", "x.pdf"}, "--out requires --format"},
		{"context bad format", []string{"context", "--room", "6f1c2b9e-0a57-4a43-9a59-2f8a6a1c0d11", "--format", "html"}, "unsupported export format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()

			cmd := NewRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestContextRequest_FromFlags(t *testing.T) {
	resetFlags()
	contextFiles = []string{"6f1c2b9e-0a57-4a43-9a59-2f8a6a1c0d11"}
	contextTopic = "교착 상태"
	contextMaxChars = 500
	contextFormat = "markdown"

	req, err := contextRequest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Topic != "교착 상태" || req.MaxChars != 500 || req.Format != entity.FormatMarkdown || len(req.FileIDs) != 1 {
		t.Errorf("unexpected request %+v", req)
	}

	contextMaxChars = -1
	if _, err := contextRequest(); !errors.Is(err, entity.ErrInvalidParameter) {
		t.Errorf("negative budget error = %v", err)
	}
}

func resetFlags() {
	vectorizeRoom, vectorizePath, vectorizeMimeType = "", "", ""
	contextRoom, contextTopic, contextFormat, contextOut = "", "", "", ""
	contextFiles = nil
	contextMaxChars = 0
}
