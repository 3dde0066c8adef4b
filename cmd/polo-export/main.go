// Command polo-export writes the CSV scoresheet for a saved snapshot without
// starting the scorer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/polo/internal/adapters/persistence"
	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/export"
	"github.com/okian/polo/internal/domain/model"
	"github.com/okian/polo/internal/domain/views"
	"github.com/okian/polo/pkg/logger"
)

// File permission constants.
const (
	outputPermission = 0600
)

// ErrNoSnapshot is returned when the snapshot file does not exist.
var ErrNoSnapshot = errors.New("snapshot not found")

func main() {
	var (
		snapshotPath = flag.String("snapshot", "polo-snapshot.json", "Snapshot file written by the scorer")
		legacy       = flag.Bool("legacy", false, "Read a state document saved by the browser-only scorer")
		locale       = flag.String("locale", "en", "CSV locale: en or ja")
		outDir       = flag.String("out", ".", "Directory for the CSV file")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()
	log := logger.Get().Named("export")

	path, err := run(ctx, *snapshotPath, *legacy, *locale, *outDir)
	if err != nil {
		log.Error(ctx, "export failed", logger.String("snapshot", *snapshotPath), logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "scoresheet written", logger.String("file", path))
}

// run exports the snapshot at snapshotPath into outDir and returns the
// written file path.
func run(ctx context.Context, snapshotPath string, legacy bool, localeName, outDir string) (string, error) {
	loc, err := export.LookupLocale(localeName)
	if err != nil {
		return "", err
	}
	snap, err := readSnapshot(ctx, snapshotPath, legacy)
	if err != nil {
		return "", err
	}

	ordered := views.DisplayOrder(derive.Derive(snap.Records), views.ExportPolicy)
	data, err := export.Encode(ordered, snap.Match, loc)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, export.Filename(snap.Match, loc))
	if err := os.WriteFile(path, data, outputPermission); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func readSnapshot(ctx context.Context, path string, legacy bool) (model.Snapshot, error) {
	if legacy {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("read %s: %w", path, err)
		}
		return persistence.DecodeLegacy(data)
	}
	snap, ok, err := persistence.NewFileStore(path).Load(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	if !ok {
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrNoSnapshot, path)
	}
	return snap, nil
}
