// Package persistence keeps a durable JSON snapshot of the game state.
//
// A single Writer goroutine owns the snapshot file. The coordinator hands it
// copies of the state through a one-slot mailbox, so there is never more than
// one write in flight and a burst of mutations collapses into the newest
// snapshot.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mcdev12/quizrunner/go/internal/models"
)

// FileStore reads and atomically replaces the snapshot file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file yields the empty default state.
func (f *FileStore) Load() (models.GameState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewGameState(), nil
	}
	if err != nil {
		return models.GameState{}, fmt.Errorf("read %s: %w", f.path, err)
	}

	state := models.NewGameState()
	if err := json.Unmarshal(data, &state); err != nil {
		return models.GameState{}, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if state.Players == nil {
		state.Players = []models.Player{}
	}
	return state, nil
}

// Write replaces the snapshot with data. The bytes go to a temporary file in
// the same directory which is then renamed over the target, so readers never
// observe a partial file.
func (f *FileStore) Write(data []byte) (err error) {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Encode serializes a snapshot the way it is stored on disk.
func Encode(state models.GameState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}
