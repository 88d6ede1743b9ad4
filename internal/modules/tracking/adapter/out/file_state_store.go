package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"shotwatch/internal/modules/tracking/domain"
	trackingout "shotwatch/internal/modules/tracking/port/out"
	"shotwatch/internal/platform/logging"
)

var log = logging.MustGetLogger("state")

type FileStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStateStore(path string) trackingout.StateStore {
	return &FileStateStore{path: path}
}

// Load treats a missing or corrupt document as empty state: losing flags
// only risks a duplicate notification, never a missed one.
func (s *FileStateStore) Load(_ context.Context) (*domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewState(), nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	state := domain.NewState()
	if len(raw) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(raw, state); err != nil {
		log.Warningf("state document %s is not valid, starting empty: %v", s.path, err)
		return domain.NewState(), nil
	}
	return state, nil
}

// Save rewrites the whole document through a synced temp file and a rename,
// so readers see either the old or the new document.
func (s *FileStateStore) Save(_ context.Context, state *domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state: %w", err)
	}
	log.Debugf("state saved to %s (%d sessions)", s.path, state.Len())
	return nil
}
