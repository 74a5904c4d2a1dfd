package mediasvc

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/takanag/nenga/core"
)

// diskStore writes derived files under a local media root served as
// static files.
type diskStore struct {
	root    string
	baseURL string
}

var _ core.FileStore = (*diskStore)(nil)

func NewDiskStore(conf *core.Config) (core.FileStore, error) {
	if err := os.MkdirAll(conf.Media.Root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating media root")
	}
	return &diskStore{
		root:    conf.Media.Root,
		baseURL: strings.TrimSuffix(conf.Media.BaseURL, "/"),
	}, nil
}

func (s *diskStore) Save(relPath string, data []byte, contentType string) (string, error) {
	relPath = path.Clean("/" + relPath)[1:] // no escaping the root
	dst := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "creating media dir")
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", errors.Wrap(err, "writing media file")
	}
	return s.baseURL + "/" + relPath, nil
}
