package sink

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const frameFilename = "current_frame.png"

// FileSink writes every frame as a PNG into a directory. The file is replaced
// atomically so readers never observe a partial frame.
type FileSink struct {
	logger *zap.Logger
	path   string
}

// NewFileSink creates the output directory and returns a sink writing into it
func NewFileSink(logger *zap.Logger, outputDir string) (*FileSink, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path, err := filepath.Abs(filepath.Join(outputDir, frameFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve frame path: %w", err)
	}

	return &FileSink{logger: logger, path: path}, nil
}

// Path returns the absolute path of the frame file
func (s *FileSink) Path() string {
	return s.path
}

// Draw encodes img and moves it into place
func (s *FileSink) Draw(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".frame-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp frame: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace frame: %w", err)
	}

	s.logger.Debug("Frame written", zap.String("path", s.path))
	return nil
}

// Close is a no-op; the last frame stays on disk
func (s *FileSink) Close() error {
	return nil
}
