// Package backend manages the flat file backing a namespace's block data:
// opening or creating the image, sizing it, and mapping it into process
// memory so command handlers can treat it as a plain byte slice.
package backend

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Store is an mmap-backed block image. All reads and writes operate directly
// against the mapping; there is no separate page cache to flush beyond the
// OS's own dirty-page writeback and an explicit Sync.
type Store struct {
	file *os.File
	data []byte
}

// Open maps an existing or newly created backing file of exactly sizeBytes
// into memory. If the file is smaller than sizeBytes it is extended with
// Fallocate, matching how a real NVMe backing store is provisioned up front
// rather than grown lazily.
func Open(path string, sizeBytes int64) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "backend: open %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "backend: stat %s", path)
	}

	if info.Size() < sizeBytes {
		if err := unix.Fallocate(int(f.Fd()), 0, 0, sizeBytes); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "backend: fallocate %s to %d bytes", path, sizeBytes)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(sizeBytes), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "backend: mmap %s", path)
	}

	return &Store{file: f, data: data}, nil
}

// Size returns the mapped image size in bytes.
func (s *Store) Size() int64 {
	return int64(len(s.data))
}

// ReadAt copies len(buf) bytes starting at byte offset off into buf.
func (s *Store) ReadAt(off int64, buf []byte) error {
	if off < 0 || off+int64(len(buf)) > int64(len(s.data)) {
		return errors.Errorf("backend: read out of range: off=%d len=%d size=%d", off, len(buf), len(s.data))
	}
	copy(buf, s.data[off:off+int64(len(buf))])
	return nil
}

// WriteAt copies buf into the image starting at byte offset off.
func (s *Store) WriteAt(off int64, buf []byte) error {
	if off < 0 || off+int64(len(buf)) > int64(len(s.data)) {
		return errors.Errorf("backend: write out of range: off=%d len=%d size=%d", off, len(buf), len(s.data))
	}
	copy(s.data[off:off+int64(len(buf))], buf)
	return nil
}

// Sync flushes the mapping's dirty pages to the backing file.
func (s *Store) Sync() error {
	if err := unix.Msync(s.data, unix.MS_SYNC); err != nil {
		return errors.Wrap(err, "backend: msync")
	}
	return nil
}

// Close unmaps the image and closes the underlying file.
func (s *Store) Close() error {
	if err := unix.Munmap(s.data); err != nil {
		s.file.Close()
		return errors.Wrap(err, "backend: munmap")
	}
	return errors.Wrap(s.file.Close(), "backend: close")
}
