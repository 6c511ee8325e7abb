package source

import (
	"context"

	"github.com/viant/afs"
)

// Loader reads Cursive0 source files through an afs.Service, so the
// same pipeline can be pointed at a local path, an embedded FS, or a
// remote object store without the analysis packages knowing the
// difference. The driver (out of scope here) owns the Service's
// lifetime; this type just borrows it.
type Loader struct {
	fs afs.Service
}

// NewLoader wraps the default OS-backed afs service.
func NewLoader() *Loader {
	return &Loader{fs: afs.New()}
}

// NewLoaderWith lets callers inject a non-default afs service (e.g. one
// scoped to an in-memory filesystem for tests).
func NewLoaderWith(fs afs.Service) *Loader {
	return &Loader{fs: fs}
}

// Load reads the file at url (a local path or any afs-supported scheme)
// and returns a decoded *File.
func (l *Loader) Load(ctx context.Context, url string) (*File, error) {
	buf, err := l.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewFile(url, buf), nil
}
