// Package sqlite provides a SQLite-backed translation-memory corpus for
// pipelines that want random access alongside the streaming file formats.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Use Open instead of sql.Open so the correct driver name is selected.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/core/lang"
	"github.com/bitextio/bitext/internal/logging"
)

// DriverName returns the SQL driver name in use.
func DriverName() string {
	return driverName
}

// DriverType returns "purego" or "cgo" depending on the build.
func DriverType() string {
	return driverType
}

// Open opens a SQLite database using the selected driver.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

const schema = `
CREATE TABLE IF NOT EXISTS units (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	src_lang      TEXT NOT NULL,
	tgt_lang      TEXT NOT NULL,
	sentence      TEXT NOT NULL,
	translation   TEXT NOT NULL,
	tuid          TEXT,
	creation_date TEXT,
	change_date   TEXT,
	properties    TEXT
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_units_direction ON units(src_lang, tgt_lang);
`

// metaPropertiesKey is the meta row holding corpus-level properties as JSON.
const metaPropertiesKey = "properties"

// Corpus is a SQLite-file corpus handle. Languages and Len are single
// queries rather than scans, but are still memoized per instance for parity
// with the file backends.
type Corpus struct {
	path string
	name string

	languages []lang.Direction
	length    int
	scanned   bool
}

// New builds a Corpus over the database file at path.
func New(path string) *Corpus {
	base := filepath.Base(path)
	return &Corpus{
		path: path,
		name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Path returns the backing database path.
func (c *Corpus) Path() string { return c.path }

// Name returns the corpus name (filename without extension).
func (c *Corpus) Name() string { return c.name }

func (c *Corpus) scan() error {
	if c.scanned {
		return nil
	}

	db, err := Open(c.path)
	if err != nil {
		return errors.NewIO("open", c.path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT src_lang, tgt_lang, COUNT(*) FROM units GROUP BY src_lang, tgt_lang ORDER BY MIN(id)`)
	if err != nil {
		return errors.NewIO("query", c.path, err)
	}
	defer rows.Close()

	var order []lang.Direction
	total := 0
	for rows.Next() {
		var src, tgt string
		var count int
		if err := rows.Scan(&src, &tgt, &count); err != nil {
			return errors.NewIO("scan", c.path, err)
		}
		direction, err := lang.ParseDirection(src, tgt)
		if err != nil {
			return err
		}
		order = append(order, direction)
		total += count
	}
	if err := rows.Err(); err != nil {
		return errors.NewIO("query", c.path, err)
	}

	c.languages = order
	c.length = total
	c.scanned = true
	return nil
}

// Languages returns the stored language directions in first-insert order.
func (c *Corpus) Languages() ([]lang.Direction, error) {
	if err := c.scan(); err != nil {
		return nil, err
	}
	return c.languages, nil
}

// Len returns the total number of stored units.
func (c *Corpus) Len() (int, error) {
	if err := c.scan(); err != nil {
		return 0, err
	}
	return c.length, nil
}

// Properties returns the corpus-level properties from the meta table.
func (c *Corpus) Properties() (*corpus.Properties, error) {
	db, err := Open(c.path)
	if err != nil {
		return nil, errors.NewIO("open", c.path, err)
	}
	defer db.Close()

	var value string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaPropertiesKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		// A fresh or foreign database may not have the meta table at all.
		return nil, nil
	}

	props := corpus.NewProperties()
	if err := json.Unmarshal([]byte(value), props); err != nil {
		return nil, errors.Wrap(err, "corrupt corpus properties")
	}
	return props, nil
}

// OpenReader opens a streaming reader over the stored units in insert order.
func (c *Corpus) OpenReader() (corpus.Reader, error) {
	r := NewReader(c.path)
	if err := r.Open(); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenWriter opens a writer appending units to the database, carrying over
// any stored corpus properties.
func (c *Corpus) OpenWriter() (corpus.Writer, error) {
	props, err := c.Properties()
	if err != nil {
		return nil, err
	}

	w := NewWriter(c.path, WithProperties(props))
	if err := w.Open(); err != nil {
		return nil, err
	}
	c.scanned = false
	c.languages = nil
	c.length = 0
	return w, nil
}

// Reader streams units out of the units table in insert order.
type Reader struct {
	path string
	db   *sql.DB
	rows *sql.Rows
}

// NewReader returns an unopened reader over the database at path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Open opens the database and starts the unit query.
func (r *Reader) Open() error {
	db, err := Open(r.path)
	if err != nil {
		return errors.NewIO("open", r.path, err)
	}

	rows, err := db.Query(`SELECT src_lang, tgt_lang, sentence, translation,
		COALESCE(tuid, ''), COALESCE(creation_date, ''), COALESCE(change_date, ''), COALESCE(properties, '')
		FROM units ORDER BY id`)
	if err != nil {
		db.Close()
		return errors.NewIO("query", r.path, err)
	}

	r.db = db
	r.rows = rows
	logging.CorpusEvent("reader_open", "sqlite", r.path)
	return nil
}

// Next returns the next stored unit, or io.EOF.
func (r *Reader) Next() (corpus.Unit, error) {
	if r.rows == nil {
		return corpus.Unit{}, errors.NewNotOpen("reader", r.path)
	}

	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return corpus.Unit{}, errors.NewIO("read", r.path, err)
		}
		return corpus.Unit{}, io.EOF
	}

	var src, tgt, sentence, translation, tuid, creationDate, changeDate, propsJSON string
	if err := r.rows.Scan(&src, &tgt, &sentence, &translation, &tuid, &creationDate, &changeDate, &propsJSON); err != nil {
		return corpus.Unit{}, errors.NewIO("scan", r.path, err)
	}

	direction, err := lang.ParseDirection(src, tgt)
	if err != nil {
		return corpus.Unit{}, err
	}

	var props *corpus.Properties
	if propsJSON != "" {
		props = corpus.NewProperties()
		if err := json.Unmarshal([]byte(propsJSON), props); err != nil {
			return corpus.Unit{}, &errors.RecordError{Path: r.path, Message: "corrupt unit properties", Err: err}
		}
	}

	return corpus.Unit{
		Language:     direction,
		Sentence:     sentence,
		Translation:  translation,
		TUID:         tuid,
		CreationDate: creationDate,
		ChangeDate:   changeDate,
		Properties:   props,
	}, nil
}

// Close releases the result set and the database handle. Safe to call more
// than once.
func (r *Reader) Close() error {
	if r.db == nil {
		return nil
	}
	rows, db := r.rows, r.db
	r.rows, r.db = nil, nil

	logging.CorpusEvent("reader_close", "sqlite", r.path)
	err := rows.Close()
	if cerr := db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Writer inserts units inside a single transaction committed on Close.
type Writer struct {
	path       string
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	properties *corpus.Properties
	closed     bool
	units      int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithProperties stores corpus-level properties in the meta table on Close.
func WithProperties(p *corpus.Properties) WriterOption {
	return func(w *Writer) {
		if p != nil {
			w.properties = corpus.CopyProperties(p)
		}
	}
}

// NewWriter returns an unopened writer over the database at path.
func NewWriter(path string, opts ...WriterOption) *Writer {
	w := &Writer{path: path}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddProperty appends a corpus-level property stored on Close.
func (w *Writer) AddProperty(key, value string) {
	if w.properties == nil {
		w.properties = corpus.NewProperties()
	}
	w.properties.Put(key, value)
}

// Open opens the database, creates the schema if needed and begins the
// write transaction.
func (w *Writer) Open() error {
	db, err := Open(w.path)
	if err != nil {
		return errors.NewIO("open", w.path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return errors.NewIO("create schema", w.path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return errors.NewIO("begin", w.path, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO units
		(src_lang, tgt_lang, sentence, translation, tuid, creation_date, change_date, properties)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		db.Close()
		return errors.NewIO("prepare", w.path, err)
	}

	w.db = db
	w.tx = tx
	w.stmt = stmt
	logging.CorpusEvent("writer_open", "sqlite", w.path)
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Write inserts one unit.
func (w *Writer) Write(u corpus.Unit) error {
	if w.stmt == nil {
		return errors.NewNotOpen("writer", w.path)
	}

	var propsJSON any
	if u.Properties.Size() > 0 {
		data, err := json.Marshal(u.Properties)
		if err != nil {
			return &errors.RecordError{Path: w.path, Message: "unit not serializable", Err: err}
		}
		propsJSON = string(data)
	}

	_, err := w.stmt.Exec(
		u.Language.Source.String(), u.Language.Target.String(),
		u.Sentence, u.Translation,
		nullable(u.TUID), nullable(u.CreationDate), nullable(u.ChangeDate), propsJSON)
	if err != nil {
		return errors.NewIO("insert", w.path, err)
	}
	w.units++
	return nil
}

// Close stores corpus properties, commits the transaction and releases the
// database handle. Safe to call more than once.
func (w *Writer) Close() error {
	if w.closed || w.db == nil {
		return nil
	}
	w.closed = true

	var first error
	if w.properties.Size() > 0 {
		data, err := json.Marshal(w.properties)
		if err == nil {
			_, err = w.tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`, metaPropertiesKey, string(data))
		}
		if err != nil {
			first = errors.NewIO("write meta", w.path, err)
		}
	}

	w.stmt.Close()
	if err := w.tx.Commit(); err != nil && first == nil {
		first = errors.NewIO("commit", w.path, err)
	}
	if err := w.db.Close(); err != nil && first == nil {
		first = errors.NewIO("close", w.path, err)
	}
	logging.CorpusEvent("writer_close", "sqlite", w.path, "units", w.units)
	return first
}

// Detect reports whether path names a SQLite corpus database.
func Detect(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func init() {
	corpus.RegisterFormat(corpus.Format{
		Name:   "sqlite",
		Detect: Detect,
		Open: func(path string) (corpus.Corpus, error) {
			return New(path), nil
		},
	})
}
