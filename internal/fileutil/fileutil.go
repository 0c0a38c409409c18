// Package fileutil provides file helpers shared by the corpus backends:
// tail-line reads, transparent compression, content checksums and links.
package fileutil

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/bitextio/bitext/core/errors"
)

// tailWindowStart is the initial backward window for TailLine.
const tailWindowStart = 1024

// TailLine returns the last complete line of the file at path, without its
// trailing newline. It reads only the final bytes of the file through a
// backward-growing window that doubles until a newline is found or the whole
// file has been read, so the cost is proportional to the line, not the file.
func TailLine(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.NewIO("stat", path, err)
	}
	size := info.Size()

	window := int64(tailWindowStart)
	for {
		if window > size {
			window = size
		}
		if _, err := f.Seek(-window, io.SeekEnd); err != nil {
			return nil, errors.NewIO("seek", path, err)
		}
		buf, err := io.ReadAll(f)
		if err != nil {
			return nil, errors.NewIO("read", path, err)
		}

		buf = bytes.TrimRight(buf, "\n")
		if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
			return buf[i+1:], nil
		}
		if window >= size {
			return buf, nil
		}
		window *= 2
	}
}

// IsCompressed reports whether path names a gzip- or xz-compressed file.
func IsCompressed(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".xz":
		return true
	}
	return false
}

// StripCompressionExt removes a trailing .gz/.xz extension, if any.
func StripCompressionExt(path string) string {
	if IsCompressed(path) {
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}

type wrappedReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (w *wrappedReadCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type wrappedWriteCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *wrappedWriteCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenReader opens path for reading, transparently decompressing .gz and .xz
// files. Closing the returned reader closes the underlying file.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("open", path, err)
		}
		return &wrappedReadCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("open", path, err)
		}
		return &wrappedReadCloser{Reader: xr, closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

// CreateWriter creates (truncating) path for writing, transparently
// compressing .gz and .xz files. The parent directory must exist. Closing
// the returned writer flushes the compressor and closes the file.
func CreateWriter(path string) (io.WriteCloser, error) {
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.NewIO("create", path, fmt.Errorf("parent directory %q does not exist", dir))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewIO("create", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zw := gzip.NewWriter(f)
		return &wrappedWriteCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
	case ".xz":
		xw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("create", path, err)
		}
		return &wrappedWriteCloser{Writer: xw, closers: []io.Closer{xw, f}}, nil
	default:
		return f, nil
	}
}

// Checksum returns the hex BLAKE3 digest of the file content at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.NewIO("open", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.NewIO("read", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Link links filePath into destPath, hard by default or symbolic on request.
// If destPath is a directory the link keeps the source basename. An existing
// destination file is replaced only when overwrite is set. Returns the final
// link path.
func Link(filePath, destPath string, symbolic, overwrite bool) (string, error) {
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		return "", errors.NewIO("link", filePath, fmt.Errorf("source file does not exist"))
	}

	if info, err := os.Stat(destPath); err == nil {
		if info.IsDir() {
			destPath = filepath.Join(destPath, filepath.Base(filePath))
			if _, err := os.Stat(destPath); err == nil {
				if !overwrite {
					return "", errors.NewIO("link", destPath, fmt.Errorf("destination already exists"))
				}
				if err := os.Remove(destPath); err != nil {
					return "", errors.NewIO("link", destPath, err)
				}
			}
		} else {
			if !overwrite {
				return "", errors.NewIO("link", destPath, fmt.Errorf("destination already exists"))
			}
			if err := os.Remove(destPath); err != nil {
				return "", errors.NewIO("link", destPath, err)
			}
		}
	} else {
		dir := filepath.Dir(destPath)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return "", errors.NewIO("link", destPath, fmt.Errorf("destination directory %q does not exist", dir))
		}
	}

	var err error
	if symbolic {
		err = os.Symlink(filePath, destPath)
	} else {
		err = os.Link(filePath, destPath)
	}
	if err != nil {
		return "", errors.NewIO("link", destPath, err)
	}
	return destPath, nil
}
