package selection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// FileStore persists the Selection singleton as a single JSON file.
// Every save overwrites the whole value; readers get empty sets when
// nothing was ever saved. Both the interactive handlers and the daily
// scheduler read the same value, last saved wins.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a selection store backed by the given file path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "selection_store").Logger(),
	}
}

// Save overwrites the stored selection. The write goes through a temp
// file and rename so a crash never leaves a half-written selection.
func (s *FileStore) Save(sel types.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sel.AgentIDs == nil {
		sel.AgentIDs = []string{}
	}
	if sel.SmartListIDs == nil {
		sel.SmartListIDs = []string{}
	}

	data, err := json.MarshalIndent(sel, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".selections-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp selection file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write selection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close selection file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace selection file: %w", err)
	}

	s.logger.Info().
		Int("agents", len(sel.AgentIDs)).
		Int("smart_lists", len(sel.SmartListIDs)).
		Msg("selections saved")
	return nil
}

// Load returns the stored selection, or empty sets when no selection
// has been saved yet.
func (s *FileStore) Load() (types.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return types.Selection{AgentIDs: []string{}, SmartListIDs: []string{}}, nil
	}
	if err != nil {
		return types.Selection{}, fmt.Errorf("failed to read selection file: %w", err)
	}

	var sel types.Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return types.Selection{}, fmt.Errorf("failed to parse selection file: %w", err)
	}
	if sel.AgentIDs == nil {
		sel.AgentIDs = []string{}
	}
	if sel.SmartListIDs == nil {
		sel.SmartListIDs = []string{}
	}
	return sel, nil
}
