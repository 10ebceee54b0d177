package faces

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/internal/game"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("img"), 0o644))
	}
}

func TestDirSourceValues(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1.png", "2.jpg", "2.png", "4.JPG", "10.jpeg", "default.png", "notes.txt", "03.png", "0.png")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "5.png"), 0o755))

	vals, err := DirSource{Dir: dir}.Values()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4", "10"}, vals)
}

func TestDirSourcePathPrefersPNG(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2.jpg", "2.png", "3.jpg")
	src := DirSource{Dir: dir}

	p, ok := src.Path("2")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "2.png"), p)

	p, ok = src.Path("3")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "3.jpg"), p)

	for _, v := range []string{"9", "../2", "02", "x", ""} {
		_, ok := src.Path(v)
		assert.Falsef(t, ok, "value %q", v)
	}
}

func TestDirSourceMissingDir(t *testing.T) {
	_, err := DirSource{Dir: filepath.Join(t.TempDir(), "nope")}.Values()
	assert.Error(t, err)
}

func TestDirSourceShortageFailsDeckBuild(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1.png", "2.png", "4.png")

	_, err := game.NewDeckBuilder(DirSource{Dir: dir}, nil).Build(6)
	assert.ErrorIs(t, err, game.ErrAssetShortage)
}

func TestEmbedded(t *testing.T) {
	list, err := Embedded()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(list), 32)

	seen := map[string]bool{}
	for _, v := range list {
		assert.NotEmpty(t, v)
		assert.Falsef(t, seen[v], "duplicate face %q", v)
		seen[v] = true
	}
}

func TestListSourceReturnsCopy(t *testing.T) {
	src := ListSource{"a", "b"}
	vals, err := src.Values()
	require.NoError(t, err)
	vals[0] = "z"
	assert.Equal(t, "a", src[0])
}

func TestFromConfig(t *testing.T) {
	src, err := FromConfig("")
	require.NoError(t, err)
	assert.IsType(t, ListSource{}, src)

	dir := t.TempDir()
	src, err = FromConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DirSource{Dir: dir}, src)

	_, err = FromConfig(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
