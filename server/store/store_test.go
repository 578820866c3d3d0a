package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveAndRead(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	require.NoError(t, d.Save("a.jpg", bytes.NewReader([]byte("first"))))
	b, err := d.Read("a.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), b)

	// Name collisions overwrite
	require.NoError(t, d.Save("a.jpg", bytes.NewReader([]byte("second"))))
	b, err = d.Read("a.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), b)

	// Path traversal is stripped down to the base name
	require.NoError(t, d.Save("../../evil.jpg", bytes.NewReader([]byte("x"))))
	_, err = os.Stat(filepath.Join(d.Root, "evil.jpg"))
	require.NoError(t, err)
}

func TestLatestImages(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	names := []string{"one.jpg", "two.jpg", "three.jpeg", "skip.txt"}
	for _, name := range names {
		require.NoError(t, d.SaveBytes(name, []byte(name)))
	}
	// Control mtimes explicitly so "most recent" is deterministic
	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(d.Root, "one.jpg"), base, base))
	require.NoError(t, os.Chtimes(filepath.Join(d.Root, "two.jpg"), base.Add(time.Minute), base.Add(time.Minute)))
	require.NoError(t, os.Chtimes(filepath.Join(d.Root, "three.jpeg"), base.Add(2*time.Minute), base.Add(2*time.Minute)))

	latest, err := d.LatestImages(2)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(d.Root, "three.jpeg"),
		filepath.Join(d.Root, "two.jpg"),
	}, latest)

	// Asking for more than exists returns everything (non-JPEGs excluded)
	latest, err = d.LatestImages(10)
	require.NoError(t, err)
	require.Len(t, latest, 3)
}

func TestLatestImagesEmpty(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	latest, err := d.LatestImages(3)
	require.NoError(t, err)
	require.Len(t, latest, 0)
}
