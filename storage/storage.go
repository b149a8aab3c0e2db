package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"tailplane/config"
	"tailplane/model"
)

const snapshotLayout = "2006-01-02T15-04-05.000000000Z"

// ErrNoSnapshots is returned by Latest when nothing has been recorded.
var ErrNoSnapshots = errors.New("no snapshots recorded")

// Store provides persistent storage for accepted configurations.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// New creates a new Store instance with the given base directory.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// EnsureDirs creates the necessary directory structure for storing snapshots.
func (s *Store) EnsureDirs() error {
	return os.MkdirAll(filepath.Join(s.baseDir, "snapshots"), 0o755)
}

// NewSnapshot captures rec as it was accepted at the given time.
func NewSnapshot(rec config.Record, sources []string, at time.Time) *model.Snapshot {
	at = at.UTC()
	return &model.Snapshot{
		ID:        at.Format(snapshotLayout),
		Timestamp: at,
		Sources:   append([]string(nil), sources...),
		Digest:    rec.Digest(),
		Document:  rec.Document(),
	}
}

// SaveSnapshot writes a snapshot to disk, organizing files by date.
func (s *Store) SaveSnapshot(snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if snap.Timestamp.IsZero() {
		return fmt.Errorf("snapshot has no timestamp")
	}
	t := snap.Timestamp.UTC()
	if snap.ID == "" {
		snap.ID = t.Format(snapshotLayout)
	}

	dir := filepath.Join(
		s.baseDir,
		"snapshots",
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, snap.ID+".json")

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ListSnapshots retrieves all snapshots within the specified time range,
// inclusive. A zero bound leaves that side open. Snapshots are sorted by
// timestamp in ascending order.
func (s *Store) ListSnapshots(from, to time.Time) ([]model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = from.UTC()
	to = to.UTC()

	base := filepath.Join(s.baseDir, "snapshots")
	snaps := []model.Snapshot{}

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var snap model.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if snap.Timestamp.IsZero() {
			return nil
		}

		t := snap.Timestamp.UTC()
		if !from.IsZero() && t.Before(from) {
			return nil
		}
		if !to.IsZero() && t.After(to) {
			return nil
		}

		snaps = append(snaps, snap)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snaps, nil
		}
		return nil, err
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})

	return snaps, nil
}

// Latest returns the most recent snapshot.
func (s *Store) Latest() (*model.Snapshot, error) {
	snaps, err := s.ListSnapshots(time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNoSnapshots
	}
	return &snaps[len(snaps)-1], nil
}

// Restore rebuilds the record held by a snapshot.
func Restore(snap *model.Snapshot) (config.Record, error) {
	if snap == nil {
		return config.Record{}, fmt.Errorf("nil snapshot")
	}
	return config.FromDocument(snap.Document)
}
