package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss-activity/apperr"
)

func TestWriteJSON_IndentedUnescaped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	require.NoError(t, WriteJSON(path, []map[string]string{{"title": "<b>日本語</b>"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"title\": \"<b>日本語</b>\"\n  }\n]", string(data))

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	assert.Empty(t, leftovers)
}

func TestWriteJSON_UnencodableLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	err := WriteJSON(path, map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestReadArray(t *testing.T) {
	dir := t.TempDir()

	arr := filepath.Join(dir, "arr.json")
	writeFile(t, arr, `[{"a":1},{"a":2}]`)
	items, err := ReadArray(arr)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	obj := filepath.Join(dir, "obj.json")
	writeFile(t, obj, `{"data":[]}`)
	items, err = ReadArray(obj)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"data":[]}`, string(items[0]))

	scalar := filepath.Join(dir, "scalar.json")
	writeFile(t, scalar, `42`)
	items, err = ReadArray(scalar)
	require.NoError(t, err)
	assert.Empty(t, items)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `[{"a":`)
	_, err = ReadArray(bad)
	assert.ErrorIs(t, err, apperr.ErrParse)

	_, err = ReadArray(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
