package filing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntorreslo/ndf-letters/constants"
)

var day = time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)

func TestDayDir(t *testing.T) {
	assert.Equal(t, filepath.Join("root", "2025", "06", "170625"), DayDir("root", day))
}

func TestDiscoverFiltersAndOrders(t *testing.T) {
	root := t.TempDir()
	dir := DayDir(root, day)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	for _, name := range []string{
		"b-carta.pdf",
		"a-carta.PDF",
		"notes.txt",
		".hidden.pdf",
		"resumen.xlsx",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir.pdf"), 0o755))

	docs, err := Discover(root, day)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a-carta.PDF", docs[0].Filename)
	assert.Equal(t, "b-carta.pdf", docs[1].Filename)
}

func TestDiscoverMissingDayDirIsFatal(t *testing.T) {
	_, err := Discover(t.TempDir(), day)
	require.Error(t, err)
}

func TestNewFilename(t *testing.T) {
	assert.Equal(t, "BANCO SANTANDER 17-06-25 1010.pdf",
		NewFilename(constants.BancoSantander, day, 1010))
}

func TestFileCopy(t *testing.T) {
	inRoot, outRoot := t.TempDir(), t.TempDir()
	dir := DayDir(inRoot, day)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	src := filepath.Join(dir, "1234567.pdf")
	require.NoError(t, os.WriteFile(src, []byte("pdf-bytes"), 0o644))

	doc := Document{Path: src, Filename: "1234567.pdf"}
	newName, err := FileCopy(doc, outRoot, constants.Scotiabank, day, 1001)
	require.NoError(t, err)
	assert.Equal(t, "SCOTIABANK 17-06-25 1001.pdf", newName)

	copied, err := os.ReadFile(filepath.Join(DayDir(outRoot, day), "SCOTIABANK", newName))
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), copied)

	// source untouched
	orig, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), orig)
}
