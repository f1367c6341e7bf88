package sink

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

func TestCommandSink(t *testing.T) {
	tests := []struct {
		name          string
		command       func(dir string) string
		expectNewErr  string
		expectDrawErr string
		validate      func(t *testing.T, dir string)
	}{
		{
			name:    "Success - Placeholder Replaced",
			command: func(dir string) string { return "cp %s " + filepath.Join(dir, "copy.png") },
			validate: func(t *testing.T, dir string) {
				if _, err := os.Stat(filepath.Join(dir, "copy.png")); err != nil {
					t.Errorf("command did not receive frame path: %v", err)
				}
			},
		},
		{
			name:    "Success - Path Appended",
			command: func(dir string) string { return "test -f" },
		},
		{
			name:          "Error - Command Fails",
			command:       func(dir string) string { return "false" },
			expectDrawErr: "failed to display frame with false",
		},
		{
			name:         "Error - Empty Command",
			command:      func(dir string) string { return "   " },
			expectNewErr: "sink command is empty",
		},
		{
			name:         "Error - Unknown Binary",
			command:      func(dir string) string { return "coverpanel-no-such-viewer %s" },
			expectNewErr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			file, err := NewFileSink(zap.NewNop(), filepath.Join(dir, "out"))
			if err != nil {
				t.Fatal(err)
			}

			s, err := NewCommandSink(zap.NewNop(), file, tt.command(dir))
			if tt.expectNewErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectNewErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expectNewErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			err = s.Draw(context.Background(), imaging.New(16, 16, color.NRGBA{G: 255, A: 255}))
			if tt.expectDrawErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectDrawErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expectDrawErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, dir)
			}
			if err := s.Close(); err != nil {
				t.Errorf("unexpected close error: %v", err)
			}
		})
	}
}
