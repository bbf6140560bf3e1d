package assets

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"
)

// ErrNotFound is returned by sources that hold no asset of the requested name.
var ErrNotFound = eris.New("asset not found")

// Source opens the raw bytes of a named asset.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Extensions tried by DirSource, in order.
const (
	ExtModel     = ".yaml"
	ExtModelZstd = ".yaml.zst"
	ExtModelGzip = ".yaml.gz"
)

// DirSource reads models from a directory, transparently decompressing
// zstd and gzip files.
type DirSource struct {
	Root string
}

func (s DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "open "+name)
	}
	if name == "" || filepath.Base(name) != name {
		return nil, eris.Wrapf(ErrNotFound, "invalid asset name %q", name)
	}
	for _, ext := range []string{ExtModel, ExtModelZstd, ExtModelGzip} {
		rc, err := OpenFile(filepath.Join(s.Root, name+ext))
		if err != nil {
			if eris.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		return rc, nil
	}
	return nil, eris.Wrapf(ErrNotFound, "%q in %s", name, s.Root)
}

// OpenFile opens one model file, decompressing it according to its extension.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "open %s", path)
	}
	ext := filepath.Ext(path)
	if strings.HasSuffix(path, ExtModelZstd) {
		ext = ExtModelZstd
	} else if strings.HasSuffix(path, ExtModelGzip) {
		ext = ExtModelGzip
	}
	rc, err := decompress(f, ext)
	if err != nil {
		_ = f.Close()
		return nil, eris.Wrapf(err, "open %s", path)
	}
	return rc, nil
}

func decompress(f *os.File, ext string) (io.ReadCloser, error) {
	switch ext {
	case ExtModelZstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		return &stackedReader{Reader: dec, close: func() error {
			dec.Close()
			return f.Close()
		}}, nil
	case ExtModelGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		return &stackedReader{Reader: gz, close: func() error {
			_ = gz.Close()
			return f.Close()
		}}, nil
	default:
		return f, nil
	}
}

type stackedReader struct {
	io.Reader
	close func() error
}

func (r *stackedReader) Close() error { return r.close() }

// MemSource serves assets from memory. It is safe for concurrent use.
type MemSource struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemSource returns a source holding a copy of files.
func NewMemSource(files map[string][]byte) *MemSource {
	s := &MemSource{files: make(map[string][]byte, len(files))}
	for k, v := range files {
		s.files[k] = append([]byte(nil), v...)
	}
	return s
}

// Put adds or replaces an asset.
func (s *MemSource) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
}

func (s *MemSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "open "+name)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.files[name]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "%q", name)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
