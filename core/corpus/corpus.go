package corpus

import (
	"io"

	"github.com/bitextio/bitext/core/lang"
)

// Reader streams units out of a backing store. A Reader is a scoped
// resource: Open acquires the underlying handles, Close releases them on
// every exit path. Next before Open fails with ErrNotOpen.
type Reader interface {
	Open() error
	// Next returns the next unit, or io.EOF when the stream is exhausted.
	Next() (Unit, error)
	Close() error
}

// Writer streams units into a backing store. Writers own their file
// exclusively until Close; Close is semantically required, not cleanup:
// backends append their trailer or closing markup there, so a file written
// by an unclosed Writer has no usable summary.
type Writer interface {
	Open() error
	Write(Unit) error
	Close() error
}

// Corpus is a named, language-direction-addressable handle to a backing
// store. A Corpus holds no open file handles outside the lifetime of a
// Reader or Writer it vends; Languages, Len and Properties may scan the
// store once and memoize the result for the instance's lifetime.
type Corpus interface {
	Name() string
	Languages() ([]lang.Direction, error)
	Len() (int, error)
	Properties() (*Properties, error)
	OpenReader() (Reader, error)
	OpenWriter() (Writer, error)
}

// ReadAll drains r into a slice. The reader must already be open; it is not
// closed. Intended for tests and small corpora.
func ReadAll(r Reader) ([]Unit, error) {
	var units []Unit
	for {
		u, err := r.Next()
		if err == io.EOF {
			return units, nil
		}
		if err != nil {
			return units, err
		}
		units = append(units, u)
	}
}

// Copy streams every unit of src into dst. Both must already be open;
// neither is closed.
func Copy(dst Writer, src Reader) (int, error) {
	n := 0
	for {
		u, err := src.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := dst.Write(u); err != nil {
			return n, err
		}
		n++
	}
}
