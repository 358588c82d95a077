/*
Package collection persists named collections of schemaless records.

Every collection is a single JSON array stored at <root>/<name>/data.json. All
operations load the entire array, work on it in memory and write the entire
array back. A collection comes into existence the first time something is
written to it.

Concurrent requests against the same collection are serialised by a striped
lock keyed on the collection name, so the read modify write cycle of one
request never interleaves with another on the same file. Writes go to a
temporary file first and are renamed into place.
*/
package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/alyssonw2/BD-AJ/models"
	"github.com/rs/zerolog/log"
)

// ---------------------------

type StoreConfig struct {
	// Root directory refers to the start of the filesystem where all data is stored
	RootDir string `yaml:"rootDir"`
	// Number of locks collection names are spread over
	LockStripes int `yaml:"lockStripes"`
}

var validName = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateName rejects collection names that could escape the root directory
// or are otherwise unsuitable as a directory name.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: collection %q", ErrInvalidName, name)
	}
	return nil
}

// validateWritableName additionally rejects the uploads collection, whose
// records only change together with their blobs.
func validateWritableName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if name == models.CollectionUploads {
		return fmt.Errorf("%w: collection %q is only written through uploads", ErrInvalidName, name)
	}
	return nil
}

// ---------------------------

type Store struct {
	rootDir string
	locks   *lockStripes
	now     func() time.Time
}

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.RootDir == "" {
		return nil, fmt.Errorf("store root directory is not set")
	}
	if err := os.MkdirAll(cfg.RootDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create root directory %s: %w", cfg.RootDir, err)
	}
	stripes := cfg.LockStripes
	if stripes <= 0 {
		stripes = 64
	}
	log.Info().Str("rootDir", cfg.RootDir).Int("lockStripes", stripes).Msg("NewStore")
	return &Store{
		rootDir: cfg.RootDir,
		locks:   newLockStripes(stripes),
		now:     time.Now,
	}, nil
}

func (s *Store) RootDir() string {
	return s.rootDir
}

func (s *Store) dataPath(name string) string {
	return filepath.Join(s.rootDir, name, models.CollectionDataFile)
}

// ---------------------------

// readCollection loads the whole array. A missing file is reported with exists
// false rather than an error, an empty file counts as an empty array.
func (s *Store) readCollection(name string) (records []models.Record, exists bool, err error) {
	data, err := os.ReadFile(s.dataPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not read collection %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Record{}, true, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, true, fmt.Errorf("could not decode collection %s: %w", name, err)
	}
	return records, true, nil
}

func (s *Store) writeCollection(name string, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("could not encode collection %s: %w", name, err)
	}
	// ---------------------------
	dir := filepath.Join(s.rootDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create collection directory %s: %w", dir, err)
	}
	if _, err := writeFileAtomic(s.dataPath(name), &buf); err != nil {
		return fmt.Errorf("could not write collection %s: %w", name, err)
	}
	return nil
}

// stageFile streams src into a hidden temporary file inside dir. The caller
// either renames it into place or removes it.
func stageFile(dir string, src io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", 0, fmt.Errorf("could not create temp file: %w", err)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		return "", 0, errors.Join(fmt.Errorf("could not write temp file: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return "", 0, errors.Join(fmt.Errorf("could not close temp file: %w", err), os.Remove(tmp.Name()))
	}
	return tmp.Name(), n, nil
}

// writeFileAtomic streams src into a temporary file next to path and renames
// it into place, so readers see either the old or the new content.
func writeFileAtomic(path string, src io.Reader) (int64, error) {
	tmpName, n, err := stageFile(filepath.Dir(path), src)
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, errors.Join(fmt.Errorf("could not rename temp file: %w", err), os.Remove(tmpName))
	}
	return n, nil
}

// nextId hands out the current time in milliseconds, bumped past the largest
// id already in the collection so ids stay unique and increasing even when
// several records arrive within the same millisecond.
func nextId(records []models.Record, now time.Time) int64 {
	id := now.UnixMilli()
	for _, r := range records {
		if rid, ok := r.Id(); ok && rid >= id {
			id = rid + 1
		}
	}
	return id
}
