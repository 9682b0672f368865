package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const followingJS = `window.YTD.following.part0 = [
  {
    "following" : {
      "accountId" : "1234567890",
      "userLink" : "https://twitter.com/intent/user?user_id=1234567890"
    }
  },
  {
    "following" : {
      "accountId" : "987654321",
      "userLink" : "https://twitter.com/intent/user?user_id=987654321"
    }
  }
]`

func TestRead(t *testing.T) {
	t.Run("following.js with assignment prefix", followingJSTest)
	t.Run("bare following.json array", followingJSONTest)
	t.Run("duplicate account ids collapse", dedupeTest)
	t.Run("missing file", notFoundTest)
	t.Run("no list literal", formatErrTest)
	t.Run("entry without accountId", missingIDTest)
}

func followingJSTest(t *testing.T) {
	path := writeArchive(t, followingJS)
	records, err := Read(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1234567890", records[0].AccountID)
	assert.Equal(t, "https://twitter.com/intent/user?user_id=1234567890", records[0].UserLink)
	assert.Equal(t, "987654321", records[1].AccountID)
}

func followingJSONTest(t *testing.T) {
	path := writeArchive(t, `[{"following": {"accountId": "42"}}]`)
	records, err := Read(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "42", records[0].AccountID)
	assert.Empty(t, records[0].UserLink)
}

func dedupeTest(t *testing.T) {
	records, err := Parse([]byte(`[
		{"following": {"accountId": "1"}},
		{"following": {"accountId": "2"}},
		{"following": {"accountId": "1"}}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].AccountID)
	assert.Equal(t, "2", records[1].AccountID)
}

func notFoundTest(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing", "following.js"))
	assert.ErrorIs(t, err, ErrArchiveNotFound)
}

func formatErrTest(t *testing.T) {
	path := writeArchive(t, `window.YTD.following.part0 = "oops"`)
	_, err := Read(path)
	assert.ErrorIs(t, err, ErrArchiveFormat)
}

func missingIDTest(t *testing.T) {
	_, err := Parse([]byte(`[{"following": {"userLink": "https://example.com"}}]`))
	assert.ErrorIs(t, err, ErrArchiveFormat)
}

func writeArchive(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "following.js")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
