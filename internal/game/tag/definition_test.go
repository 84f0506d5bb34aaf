package tag_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

func TestRegistry_Get(t *testing.T) {
	reg := tag.NewRegistry()
	def := &tag.Def{ID: "endure", Kind: tag.KindEndure, Lapse: tag.LapseTurnEnd}
	reg.Register(def)
	got, ok := reg.Get("endure")
	require.True(t, ok)
	assert.Equal(t, def, got)

	_, ok = reg.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_All_Sorted(t *testing.T) {
	reg := tag.NewRegistry()
	reg.Register(&tag.Def{ID: "b"})
	reg.Register(&tag.Def{ID: "a"})
	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func TestDef_Validate(t *testing.T) {
	ok := &tag.Def{ID: "foresight", Kind: tag.KindExposed, Lapse: tag.LapseSummon,
		Types: []typechart.Type{typechart.Normal, typechart.Fighting}, StripsType: typechart.Ghost}
	assert.NoError(t, ok.Validate())

	bad := &tag.Def{Kind: "weird", Lapse: "never", MaxStacks: -1}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id must not be empty")
	assert.Contains(t, err.Error(), "kind")
	assert.Contains(t, err.Error(), "lapse")
	assert.Contains(t, err.Error(), "max_stacks")

	noTypes := &tag.Def{ID: "x", Kind: tag.KindTypeImmune, Lapse: tag.LapseTurnEnd}
	assert.Error(t, noTypes.Validate())
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "magnet_rise.yaml"), []byte(`
id: magnet_rise
name: Magnet Rise
kind: type_immune
lapse: turn_end
types: [ground]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644))

	reg, err := tag.LoadDirectory(dir)
	require.NoError(t, err)
	def, ok := reg.Get("magnet_rise")
	require.True(t, ok)
	assert.Equal(t, tag.KindTypeImmune, def.Kind)
	assert.Equal(t, []typechart.Type{typechart.Ground}, def.Types)
}

func TestLoadDirectory_UnknownFieldFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("id: x\nkind: generic\nlapse: turn_end\nbogus: 1\n"), 0o644))
	_, err := tag.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_ShippedContent(t *testing.T) {
	reg, err := tag.LoadDirectory(filepath.Join("..", "..", "..", "content", "tags"))
	require.NoError(t, err)
	for _, id := range []string{"endure", "sturdy", "slow_start", "foresight", "magnet_rise"} {
		_, ok := reg.Get(id)
		assert.True(t, ok, "missing shipped tag %q", id)
	}
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := tag.LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
