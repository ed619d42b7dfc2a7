package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
)

// FileNameLayout is the timestamp part of a snapshot file name
const FileNameLayout = "02012006_150405"

var ErrNoSnapshot = errors.New("no snapshot found")

// FileSink writes each snapshot to <dir>/<link>_<ddmmYYYY_HHMMSS>.json
type FileSink struct {
	dir string
}

// NewFileSink creates dir if needed
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) Dir() string {
	return s.dir
}

func fileName(link string, at time.Time) string {
	return link + "_" + at.Format(FileNameLayout) + ".json"
}

func (s *FileSink) Write(snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	path := filepath.Join(s.dir, fileName(snap.Link, snap.CapturedAt))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing snapshot: %w", err)
	}

	log.Debug("Snapshot written", "link", snap.Link, "path", path)
	return nil
}

// Latest returns the newest snapshot of link, ordered by the capture time in
// the file name
func (s *FileSink) Latest(link string) (*model.Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("reading snapshot directory: %w", err)
	}

	prefix := link + "_"
	var newest string
	var newestAt time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		at, err := time.Parse(FileNameLayout, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
		if err != nil {
			continue
		}
		if newest == "" || at.After(newestAt) {
			newest, newestAt = name, at
		}
	}
	if newest == "" {
		return nil, ErrNoSnapshot
	}

	data, err := os.ReadFile(filepath.Join(s.dir, newest))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", newest, err)
	}
	return &snap, nil
}

func (s *FileSink) Close() error {
	return nil
}
