package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/uzzysan/Klauzule-zakazane/internal/util"
)

// LocalStore reads uploads from a directory. Locations are file names
// relative to the root; path components outside the root are stripped.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Download(_ context.Context, location string) ([]byte, error) {
	path := util.SafeJoin(s.root, location)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", util.ErrObjectNotFound, location)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", location, err)
	}
	return data, nil
}
