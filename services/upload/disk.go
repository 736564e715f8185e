// Package uploadsvc stores teacher photos. The disk implementation is the
// local collaborator standing in for a cloud image host; the API layer only
// ever sees the returned reference.
package uploadsvc

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/profconnect/backend/core"
)

type diskStorage struct {
	dir string
}

var _ core.FileStorage = (*diskStorage)(nil)

// NewDiskStorage stores files under dir, creating it if needed.
// References are served from /uploads by the API server.
func NewDiskStorage(dir string) (core.FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload dir %s", dir)
	}
	return &diskStorage{dir: dir}, nil
}

func (st *diskStorage) Save(filename string, r io.Reader) (string, error) {
	// prefix with a timestamp so repeated uploads of the same file never clash
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitize(filename))

	f, err := os.Create(filepath.Join(st.dir, name))
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	defer f.Close()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing upload file")
	}
	return path.Join("/uploads", name), nil
}

// sanitize strips any path components a client may have smuggled into the
// original filename.
func sanitize(filename string) string {
	filename = filepath.Base(filepath.Clean(filename))
	return strings.ReplaceAll(filename, string(os.PathSeparator), "-")
}
