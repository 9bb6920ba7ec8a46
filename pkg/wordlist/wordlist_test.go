package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_SkipsCommentsAndBlanks(t *testing.T) {
	path := writeWordlist(t, "# header\nadmin\n\nlogin\n#hidden\n")

	wl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "login"}, wl.Sorted())
	assert.Equal(t, path, wl.Path())
}

func TestLoad_Deduplicates(t *testing.T) {
	path := writeWordlist(t, "admin\nlogin\nadmin\nbackup\nlogin\nadmin\n")

	wl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, wl.Len())
	assert.True(t, wl.Contains("backup"))
	assert.False(t, wl.Contains("missing"))
}

func TestLoad_OnlyComments(t *testing.T) {
	path := writeWordlist(t, "# one\n\n# two\n\n")

	wl, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmpty)
	require.NotNil(t, wl)
	assert.Equal(t, 0, wl.Len())
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load(writeWordlist(t, ""))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoad_MissingFile(t *testing.T) {
	wl, err := Load(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	require.Error(t, err)
	assert.Nil(t, wl)
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidUTF8(t *testing.T) {
	_, err := Load(writeWordlist(t, "admin\n\xff\xfe\xfd\n"))
	assert.ErrorIs(t, err, ErrRead)
}

func TestRead_InvalidBytesAreNotReplaced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"mid line", "admin\nca\xffe\n", "line 2"},
		{"leading byte", "\xffadmin\n", "line 1"},
		{"after utf8 bom", "\xEF\xBB\xBFadmin\nbad\xc3\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wl, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, wl)
			assert.ErrorIs(t, err, ErrRead)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestRead_CRLFAndBOM(t *testing.T) {
	wl, err := Read(strings.NewReader("\xEF\xBB\xBFadmin\r\nlogin\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "login"}, wl.Sorted())
}

func TestRead_UTF16WithBOM(t *testing.T) {
	// "api\n" in UTF-16LE with BOM
	data := []byte{0xFF, 0xFE, 'a', 0, 'p', 0, 'i', 0, '\n', 0}
	wl, err := Read(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, wl.Sorted())
}

func TestRead_KeepsWhitespaceInsideWords(t *testing.T) {
	wl, err := Read(strings.NewReader("my docs\n"))
	require.NoError(t, err)
	assert.True(t, wl.Contains("my docs"))
}

func TestNew(t *testing.T) {
	wl := New("admin", "", "#x", "admin", "login")
	assert.Equal(t, 2, wl.Len())

	var seen []string
	for w := range wl.All() {
		seen = append(seen, w)
	}
	assert.ElementsMatch(t, []string{"admin", "login"}, seen)
}

func TestWordlist_ConcurrentReaders(t *testing.T) {
	wl := New("a", "b", "c")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count := 0
			for range wl.All() {
				count++
			}
			assert.Equal(t, 3, count)
			assert.True(t, wl.Contains("b"))
		}()
	}
	wg.Wait()
}
