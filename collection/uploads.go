package collection

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/alyssonw2/BD-AJ/models"
	"github.com/rs/zerolog/log"
)

/* Uploaded blobs are stored under the uploads collection directory in a sub
 * directory named after their extension:
 *
 *	<root>/uploads/data.json     metadata records
 *	<root>/uploads/pdf/a.pdf     blob
 *	<root>/uploads/README        blob without extension
 *
 * Blobs without extension and extension directories share one namespace, so
 * a name already taken by the other kind is rejected. All steps of an upload
 * run under the uploads lock. The blob is moved into place before its
 * metadata record is written. A crash in between leaves a blob nobody
 * references, the opposite can not happen.
 */

// cleanFilename reduces a client supplied filename to its last path element.
// Hidden names are rejected since temporary files start with a dot.
func cleanFilename(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: filename %q", ErrInvalidName, filename)
	}
	return name, nil
}

func uploadExt(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

func (s *Store) blobPath(ext, name string) string {
	return filepath.Join(s.rootDir, models.CollectionUploads, ext, name)
}

// checkUploadLayout fails when the blob would need a directory where a blob
// without extension lives, or would itself land on an extension directory.
func (s *Store) checkUploadLayout(ext, name string) error {
	if ext == "" {
		if info, err := os.Stat(s.blobPath("", name)); err == nil && info.IsDir() {
			return fmt.Errorf("%w: filename %q is taken by an upload directory", ErrInvalidName, name)
		}
		return nil
	}
	if info, err := os.Stat(s.blobPath(ext, "")); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: upload directory %q is taken by a file", ErrInvalidName, ext)
	}
	return nil
}

// replaceBlob moves the staged file over blobPath. The previous blob, if any,
// is parked under a hidden name so it can be put back. The returned restore
// undoes the move, commit drops the parked copy.
func replaceBlob(stagedPath, blobPath string) (restore func() error, commit func() error, err error) {
	parked := ""
	if _, err := os.Lstat(blobPath); err == nil {
		parked = filepath.Join(filepath.Dir(blobPath), ".old-"+filepath.Base(stagedPath))
		if err := os.Rename(blobPath, parked); err != nil {
			return nil, nil, fmt.Errorf("could not park previous blob: %w", err)
		}
	}
	if err := os.Rename(stagedPath, blobPath); err != nil {
		var undo error
		if parked != "" {
			undo = os.Rename(parked, blobPath)
		}
		return nil, nil, errors.Join(fmt.Errorf("could not move blob into place: %w", err), undo)
	}
	restore = func() error {
		if parked == "" {
			return os.Remove(blobPath)
		}
		return os.Rename(parked, blobPath)
	}
	commit = func() error {
		if parked == "" {
			return nil
		}
		return os.Remove(parked)
	}
	return restore, commit, nil
}

// ---------------------------

// CreateUpload stores the blob read from src and records its metadata. The
// fixed fields filename, path, uploadDate, type and size override whatever
// the client sent under the same keys. Uploading a filename again replaces
// both the blob and its previous metadata record. On failure the previous
// blob and metadata are left as they were.
func (s *Store) CreateUpload(metadata models.Record, filename string, src io.Reader) (models.Record, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return nil, err
	}
	ext := uploadExt(name)
	blobPath := s.blobPath(ext, name)
	lock := s.locks.forName(models.CollectionUploads)
	lock.Lock()
	defer lock.Unlock()
	// ---------------------------
	if err := s.checkUploadLayout(ext, name); err != nil {
		return nil, err
	}
	records, _, err := s.readCollection(models.CollectionUploads)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(blobPath), 0755); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	stagedPath, size, err := stageFile(filepath.Dir(blobPath), src)
	if err != nil {
		return nil, fmt.Errorf("could not store upload %s: %w", name, err)
	}
	// ---------------------------
	now := s.now()
	record := make(models.Record, len(metadata)+6)
	for k, v := range metadata {
		record[k] = v
	}
	record[models.FieldFilename] = name
	record[models.FieldPath] = path.Join(models.CollectionUploads, ext, name)
	record[models.FieldUploadDate] = now.UTC().Format(time.RFC3339Nano)
	record[models.FieldType] = ext
	record[models.FieldSize] = size
	record[models.FieldId] = nextId(records, now)
	kept := make([]models.Record, 0, len(records)+1)
	for _, r := range records {
		if r[models.FieldFilename] != name {
			kept = append(kept, r)
		}
	}
	kept = append(kept, record)
	// ---------------------------
	restore, commit, err := replaceBlob(stagedPath, blobPath)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("could not store upload %s: %w", name, err), os.Remove(stagedPath))
	}
	if err := s.writeCollection(models.CollectionUploads, kept); err != nil {
		return nil, errors.Join(err, restore())
	}
	if err := commit(); err != nil {
		log.Warn().Err(err).Str("filename", name).Msg("CreateUpload")
	}
	log.Debug().Str("filename", name).Int64("size", size).Int("replaced", len(records)+1-len(kept)).Msg("CreateUpload")
	return record, nil
}

// DeleteUpload removes the blob and every metadata record with that exact
// filename. Only a missing metadata file is an error, an unknown filename
// still rewrites the metadata and succeeds.
func (s *Store) DeleteUpload(filename string) error {
	name, err := cleanFilename(filename)
	if err != nil {
		return err
	}
	lock := s.locks.forName(models.CollectionUploads)
	lock.Lock()
	defer lock.Unlock()
	// ---------------------------
	records, exists, err := s.readCollection(models.CollectionUploads)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUploadMetadataNotFound
	}
	if err := os.Remove(s.blobPath(uploadExt(name), name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not remove upload %s: %w", name, err)
	}
	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r[models.FieldFilename] != name {
			kept = append(kept, r)
		}
	}
	if err := s.writeCollection(models.CollectionUploads, kept); err != nil {
		return err
	}
	log.Debug().Str("filename", name).Int("removed", len(records)-len(kept)).Msg("DeleteUpload")
	return nil
}

// ListUploads returns all metadata records, an empty list when nothing was
// ever uploaded.
func (s *Store) ListUploads() ([]models.Record, error) {
	lock := s.locks.forName(models.CollectionUploads)
	lock.RLock()
	defer lock.RUnlock()
	records, _, err := s.readCollection(models.CollectionUploads)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

// UploadPath resolves a path of the form ext/filename, or just filename for
// blobs without extension, to the blob on disk. Anything else, including the
// metadata file, is reported as ErrUploadNotFound.
func (s *Store) UploadPath(rel string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+rel), "/")
	parts := strings.Split(clean, "/")
	var ext, name string
	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		ext, name = parts[0], parts[1]
	default:
		return "", ErrUploadNotFound
	}
	if cleaned, err := cleanFilename(name); err != nil || cleaned != name || uploadExt(name) != ext {
		return "", ErrUploadNotFound
	}
	blobPath := s.blobPath(ext, name)
	info, err := os.Stat(blobPath)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrUploadNotFound
	}
	return blobPath, nil
}
