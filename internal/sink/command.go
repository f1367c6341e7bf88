package sink

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// CommandSink writes the frame to disk and hands its path to an external
// program, e.g. an LED matrix viewer. %s in the command is replaced with the
// frame path; without it the path is appended as the last argument.
type CommandSink struct {
	logger *zap.Logger
	file   *FileSink
	binary string
	args   []string
}

// NewCommandSink parses command and checks that its binary exists in PATH
func NewCommandSink(logger *zap.Logger, file *FileSink, command string) (*CommandSink, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("sink command is empty")
	}

	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("sink command %q not found: %w", fields[0], err)
	}

	args := fields[1:]
	if !strings.Contains(command, "%s") {
		args = append(args, "%s")
	}

	logger.Info("Command sink configured",
		zap.String("binary", fields[0]),
		zap.Strings("args", args))

	return &CommandSink{
		logger: logger,
		file:   file,
		binary: fields[0],
		args:   args,
	}, nil
}

// Draw writes the frame and runs the command against it
func (s *CommandSink) Draw(ctx context.Context, img image.Image) error {
	if err := s.file.Draw(ctx, img); err != nil {
		return err
	}

	args := make([]string, len(s.args))
	for i, arg := range s.args {
		args[i] = strings.ReplaceAll(arg, "%s", s.file.Path())
	}

	cmd := exec.CommandContext(ctx, s.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to display frame with %s: %w (output: %s)",
			s.binary, err, string(output))
	}

	s.logger.Debug("Frame displayed",
		zap.String("command", s.binary),
		zap.String("path", s.file.Path()))
	return nil
}

// Close closes the underlying file sink
func (s *CommandSink) Close() error {
	return s.file.Close()
}
