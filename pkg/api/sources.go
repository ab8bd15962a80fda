package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveSourcePath resolves rel against root and enforces that the result
// stays within root.
func resolveSourcePath(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid source root: %w", err)
	}
	absRoot = filepath.Clean(absRoot)

	absPath, err := filepath.Abs(filepath.Join(absRoot, rel))
	if err != nil {
		return "", fmt.Errorf("invalid source path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	if !strings.HasPrefix(absPath, absRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return absPath, nil
}

// readSource is the source cache loader: it reads a file under SourceDir.
func (s *Server) readSource(ctx context.Context, rel string) ([]byte, error) {
	path, err := resolveSourcePath(s.cfg.SourceDir, rel)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
