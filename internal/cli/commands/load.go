// Package commands implements the sliceofpie subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
)

// loadFile parses path as declared, or by its extension when declared is
// empty. The extension must match the declared type.
func loadFile(ctx context.Context, path, declared string) (*dataset.Dataset, error) {
	if declared == "" {
		declared = filepath.Ext(path)
	}
	format, err := dataset.ParseFormat(declared)
	if err != nil {
		return nil, err
	}
	if err := dataset.ValidateExtension(path, format); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	start := time.Now()
	ds, err := dataset.Parse(ctx, f, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	slog.Debug("file parsed",
		"file", path,
		"format", format.String(),
		"rows", ds.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ds, nil
}
