package collection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alyssonw2/BD-AJ/models"
	"github.com/stretchr/testify/require"
)

func TestNextId(t *testing.T) {
	now := time.UnixMilli(1721951931465)
	require.Equal(t, int64(1721951931465), nextId(nil, now))
	// Older records do not matter
	records := []models.Record{{"id": float64(1000)}, {"name": "no id"}}
	require.Equal(t, int64(1721951931465), nextId(records, now))
	// Same millisecond collides and gets bumped
	records = append(records, models.Record{"id": float64(1721951931465)})
	require.Equal(t, int64(1721951931466), nextId(records, now))
	// Clock went backwards
	records = append(records, models.Record{"id": int64(1721951999999)})
	require.Equal(t, int64(1721952000000), nextId(records, now))
}

func TestFrozenClockStillUnique(t *testing.T) {
	s, err := NewStore(StoreConfig{RootDir: t.TempDir(), LockStripes: 1})
	require.NoError(t, err)
	frozen := time.UnixMilli(42)
	s.now = func() time.Time { return frozen }
	first, err := s.Create("c", models.Record{})
	require.NoError(t, err)
	second, err := s.Create("c", models.Record{})
	require.NoError(t, err)
	require.Equal(t, int64(42), first["id"])
	require.Equal(t, int64(43), second["id"])
}

func TestLockStripes(t *testing.T) {
	ls := newLockStripes(8)
	require.Same(t, ls.forName("notes"), ls.forName("notes"))
	single := newLockStripes(1)
	require.Same(t, single.forName("a"), single.forName("b"))
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		in   string
		out  string
		fail bool
	}{
		{"report.pdf", "report.pdf", false},
		{"dir/report.pdf", "report.pdf", false},
		{`C:\Users\me\photo.png`, "photo.png", false},
		{"../../etc/passwd", "passwd", false},
		{"README", "README", false},
		{"", "", true},
		{"..", "", true},
		{".hidden", "", true},
		{"/", "", true},
	}
	for _, tt := range tests {
		got, err := cleanFilename(tt.in)
		if tt.fail {
			require.ErrorIs(t, err, ErrInvalidName, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.out, got)
	}
	require.Equal(t, "pdf", uploadExt("report.pdf"))
	require.Equal(t, "gz", uploadExt("archive.tar.gz"))
	require.Equal(t, "", uploadExt("README"))
}

func TestReplaceBlob(t *testing.T) {
	dir := t.TempDir()
	blobPath := filepath.Join(dir, "ring.png")
	require.NoError(t, os.WriteFile(blobPath, []byte("old"), 0644))
	// ---------------------------
	staged, _, err := stageFile(dir, strings.NewReader("new"))
	require.NoError(t, err)
	restore, _, err := replaceBlob(staged, blobPath)
	require.NoError(t, err)
	data, err := os.ReadFile(blobPath)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
	// A failed metadata write puts the previous blob back
	require.NoError(t, restore())
	data, err = os.ReadFile(blobPath)
	require.NoError(t, err)
	require.Equal(t, "old", string(data))
	// ---------------------------
	staged, _, err = stageFile(dir, strings.NewReader("newer"))
	require.NoError(t, err)
	_, commit, err := replaceBlob(staged, blobPath)
	require.NoError(t, err)
	require.NoError(t, commit())
	data, err = os.ReadFile(blobPath)
	require.NoError(t, err)
	require.Equal(t, "newer", string(data))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestReplaceBlobFreshRestoreRemoves(t *testing.T) {
	dir := t.TempDir()
	blobPath := filepath.Join(dir, "README")
	staged, _, err := stageFile(dir, strings.NewReader("read me"))
	require.NoError(t, err)
	restore, _, err := replaceBlob(staged, blobPath)
	require.NoError(t, err)
	require.FileExists(t, blobPath)
	require.NoError(t, restore())
	require.NoFileExists(t, blobPath)
}
