// Package filestore persists the credential pair to a JSON file. It is the
// durable-storage analog of the browser's local storage: credentials survive
// restarts but are scoped to the machine, not to a single session.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/agrilink/agrilink-go/token"
	"github.com/pkg/errors"
)

var _ token.Store = (*FileStore)(nil)

type FileStore struct {
	path string
	lock sync.Mutex
}

// New creates a file-backed token store at path. The file is created lazily
// on the first SetPair; a missing file reads as an empty pair.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Pair() (token.Pair, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return token.Pair{}, nil
		}
		return token.Pair{}, errors.Wrap(err, "[FileStore Pair] read")
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return token.Pair{}, errors.Wrap(err, "[FileStore Pair] decode")
	}

	return token.Pair{
		Access:  stored[token.AccessKey],
		Refresh: stored[token.RefreshKey],
	}, nil
}

func (fs *FileStore) SetPair(pair token.Pair) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := json.MarshalIndent(map[string]string{
		token.AccessKey:  pair.Access,
		token.RefreshKey: pair.Refresh,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore SetPair] encode")
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStore SetPair] mkdir")
	}

	// Write-then-rename so readers never observe a half-written pair.
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore SetPair] write")
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return errors.Wrap(err, "[FileStore SetPair] rename")
	}
	return nil
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore Clear] remove")
	}
	return nil
}
