package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "sem_3_results.pdf", SafeFilename("sem 3 results.pdf"))
	assert.Equal(t, "passwd", SafeFilename("../../etc/passwd"))
	assert.Equal(t, "grades.pdf", SafeFilename(`C:\Users\me\grades.pdf`))
	assert.NotEmpty(t, SafeFilename("???"))
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base)
	require.NoError(t, err)
	ls.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	path, err := ls.Save(strings.NewReader("%PDF-1.4"), "CSE Sem3.pdf", "pdf_imports")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "pdf_imports", "20240506070809_CSE_Sem3.pdf"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))

	second, err := ls.Save(strings.NewReader("x"), "CSE Sem3.pdf", "pdf_imports")
	require.NoError(t, err)
	assert.NotEqual(t, path, second)

	require.NoError(t, ls.DeleteFile(path))
	require.NoError(t, ls.DeleteFile(path))
	assert.Error(t, ls.DeleteFile("/etc/passwd"))
}
