package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/okian/polo/internal/domain/gameclock"
	"github.com/okian/polo/internal/domain/model"
)

// FileStore keeps the snapshot as a JSON file. Writes go to a temp file in the
// same directory and are renamed over the target so a crash never leaves a
// half-written snapshot.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (model.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Snapshot{}, false, nil
	}
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("read %s: %w", s.path, err)
	}
	snap, err := Decode(data)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *FileStore) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteSnapshot, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteSnapshot, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteSnapshot, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrWriteSnapshot, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrWriteSnapshot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteSnapshot, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteSnapshot, err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

// Decode parses a snapshot document and checks every record.
func Decode(data []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return Check(snap)
}

// Check verifies snap against the rules an added record obeys and returns it
// with the header trimmed and every clock in canonical M:SS form. Records need
// a positive unique id, a valid clock, a known team and kind, and a player
// number the kind accepts; the date must be empty or YYYY-MM-DD.
func Check(snap model.Snapshot) (model.Snapshot, error) {
	out := model.Snapshot{
		Match: model.Match{
			Date:      strings.TrimSpace(snap.Date),
			TeamWhite: strings.TrimSpace(snap.TeamWhite),
			TeamBlue:  strings.TrimSpace(snap.TeamBlue),
		},
		Records: make([]model.Record, 0, len(snap.Records)),
	}
	if !model.ValidDate(out.Date) {
		return model.Snapshot{}, fmt.Errorf("%w: match date %q is not YYYY-MM-DD", ErrCorruptSnapshot, snap.Date)
	}

	seen := make(map[int64]struct{}, len(snap.Records))
	for i, r := range snap.Records {
		switch {
		case r.ID <= 0:
			return model.Snapshot{}, fmt.Errorf("%w: record %d: id %d", ErrCorruptSnapshot, i, r.ID)
		case !r.Team.Valid():
			return model.Snapshot{}, fmt.Errorf("%w: record %d: team %q", ErrCorruptSnapshot, i, r.Team)
		case !r.Kind.Valid():
			return model.Snapshot{}, fmt.Errorf("%w: record %d: kind %q", ErrCorruptSnapshot, i, r.Kind)
		}
		if _, dup := seen[r.ID]; dup {
			return model.Snapshot{}, fmt.Errorf("%w: duplicate id %d", ErrCorruptSnapshot, r.ID)
		}
		seen[r.ID] = struct{}{}

		clock, err := gameclock.Parse(r.Clock)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("%w: record %d: %w", ErrCorruptSnapshot, i, err)
		}
		r.Clock = clock.String()
		r.Number = strings.TrimSpace(r.Number)
		if !model.ValidNumber(r.Kind, r.Number) {
			return model.Snapshot{}, fmt.Errorf("%w: record %d: player number %q for %s", ErrCorruptSnapshot, i, r.Number, r.Kind)
		}
		out.Records = append(out.Records, r)
	}
	return out, nil
}
