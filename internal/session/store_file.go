// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"strings"

	"github.com/taibuivan/yomira-harvester/pkg/fsutil"
)

// FileTokenStore keeps the token in a private file inside the data directory.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store backed by path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load returns the persisted token, or "" when the file does not exist.
func (store *FileTokenStore) Load(_ context.Context) (string, error) {
	data, ok, err := fsutil.ReadOptional(store.path)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save replaces the token file. The file is readable by the owner only.
func (store *FileTokenStore) Save(_ context.Context, token string) error {
	return fsutil.WriteAtomic(store.path, []byte(token), 0o600)
}
