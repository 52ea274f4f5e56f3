package lpk

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zip"
)

// Container is the read-only view of a package the pipeline needs: ordered
// entry names and their contents. Read must return an error wrapping
// fs.ErrNotExist for unknown names.
type Container interface {
	Names() []string
	Read(name string) ([]byte, error)
}

// ZipContainer serves a ZIP archive on disk as a Container.
type ZipContainer struct {
	rc      *zip.ReadCloser
	names   []string
	entries map[string]*zip.File
}

// OpenZip opens the archive at path. The caller must Close it.
func OpenZip(path string) (*ZipContainer, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open container %s: %w", ErrIO, path, err)
	}
	c := &ZipContainer{
		rc:      rc,
		names:   make([]string, 0, len(rc.File)),
		entries: make(map[string]*zip.File, len(rc.File)),
	}
	for _, f := range rc.File {
		if _, dup := c.entries[f.Name]; dup {
			continue
		}
		c.names = append(c.names, f.Name)
		c.entries[f.Name] = f
	}
	return c, nil
}

// Names returns entry names in archive order.
func (c *ZipContainer) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Read returns the uncompressed bytes of the named entry.
func (c *ZipContainer) Read(name string) ([]byte, error) {
	f, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open entry %s: %w", ErrIO, name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read entry %s: %w", ErrIO, name, err)
	}
	return data, nil
}

// Close releases the underlying archive file.
func (c *ZipContainer) Close() error {
	if c == nil || c.rc == nil {
		return nil
	}
	return c.rc.Close()
}
