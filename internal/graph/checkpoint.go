package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCheckpointNotFound is returned by Load when no checkpoint has been
// saved.
var ErrCheckpointNotFound = errors.New("graph: checkpoint not found")

// CheckpointStore persists the agent state as a JSON file so a gate
// conversation survives process restarts.
type CheckpointStore struct {
	path string
}

// NewCheckpointStore creates a checkpoint store backed by the given file.
func NewCheckpointStore(path string) *CheckpointStore {
	return &CheckpointStore{path: path}
}

// Load reads the persisted state.
func (c *CheckpointStore) Load() (State, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, ErrCheckpointNotFound
		}
		return State{}, fmt.Errorf("graph: read checkpoint: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("graph: parse checkpoint: %w", err)
	}
	return state, nil
}

// Save persists the state, creating the parent directory if needed.
func (c *CheckpointStore) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("graph: create checkpoint dir: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("graph: encode checkpoint: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("graph: write checkpoint: %w", err)
	}
	return nil
}

// Clear removes the checkpoint. A missing file is not an error.
func (c *CheckpointStore) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("graph: clear checkpoint: %w", err)
	}
	return nil
}
