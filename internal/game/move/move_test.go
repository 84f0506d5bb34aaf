package move_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

func TestLoadFromBytes(t *testing.T) {
	defs, err := move.LoadFromBytes([]byte(`
- id: bullet_seed
  name: Bullet Seed
  type: grass
  category: physical
  power: 25
  accuracy: 100
  attrs:
    - kind: multi_hit
      hits: "1d4+1"
`))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	d := defs[0]
	assert.Equal(t, typechart.Grass, d.Type)
	assert.Equal(t, move.Physical, d.Category)
	assert.Equal(t, move.TargetSingle, d.Target, "target defaults to single")
	assert.True(t, d.IsMultiHit())
	assert.Equal(t, 2, d.HitCount().Min())
	assert.Equal(t, 5, d.HitCount().Max())
}

func TestLoadFromBytes_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown attr":    "- {id: a, name: A, type: normal, category: physical, power: 10, attrs: [{kind: nope}]}",
		"unknown field":   "- {id: a, name: A, type: normal, category: physical, power: 10, bogus: 1}",
		"no power":        "- {id: a, name: A, type: normal, category: physical}",
		"bad category":    "- {id: a, name: A, type: normal, category: magic, power: 10}",
		"bad hits":        "- {id: a, name: A, type: normal, category: physical, power: 10, attrs: [{kind: multi_hit, hits: 'x'}]}",
		"bad fixed value": "- {id: a, name: A, type: normal, category: special, attrs: [{kind: fixed_damage}]}",
		"missing name":    "- {id: a, type: normal, category: status}",
		"bad target":      "- {id: a, name: A, type: normal, category: status, target: everyone}",
		"hp stat change":  "- {id: a, name: A, type: normal, category: status, attrs: [{kind: stat_change, stat: hp, stages: 1}]}",
		"zero stages":     "- {id: a, name: A, type: normal, category: status, attrs: [{kind: stat_change, stat: atk}]}",
		"bad status":      "- {id: a, name: A, type: normal, category: status, attrs: [{kind: inflict_status, status: doom}]}",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := move.LoadFromBytes([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestDef_Helpers(t *testing.T) {
	d := &move.Def{ID: "x", Name: "X", Category: move.Physical, Power: 10,
		Flags: []string{"contact"}, Attrs: []move.Attr{{Kind: move.AttrHighCrit, Stages: 1}}}
	require.NoError(t, d.Validate())
	assert.True(t, d.HasFlag("contact"))
	assert.False(t, d.HasFlag("sound"))
	a, ok := d.Attr(move.AttrHighCrit)
	require.True(t, ok)
	assert.Equal(t, 1, a.Stages)
	assert.False(t, d.IsMultiHit())
	assert.Equal(t, 1, d.HitCount().Max())
}

func TestTable_Resolve(t *testing.T) {
	tbl := move.NewTable(&move.Def{ID: "tackle", Name: "Tackle", Power: 40})
	d, err := tbl.Resolve("tackle")
	require.NoError(t, err)
	assert.Equal(t, "tackle", d.ID)

	d, err = tbl.Resolve("mystery")
	require.Error(t, err)
	assert.True(t, errors.Is(err, move.ErrUnknownMove))
	require.NotNil(t, d)
	assert.True(t, d.Has(move.AttrFails))

	_, ok := tbl.Get(move.StruggleID)
	assert.True(t, ok, "struggle is always present")
	assert.Equal(t, []string{"struggle", "tackle"}, tbl.IDs())
}

func TestLoadDirectory_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	src := []byte("- {id: a, name: A, type: normal, category: physical, power: 10}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.yaml"), src, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.yaml"), src, 0o644))
	_, err := move.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_ShippedContent(t *testing.T) {
	tbl, err := move.LoadDirectory(filepath.Join("..", "..", "..", "content", "moves"))
	require.NoError(t, err)
	sc, ok := tbl.Get("sheer_cold")
	require.True(t, ok)
	assert.True(t, sc.Has(move.AttrOneHitKO))
	assert.True(t, sc.Has(move.AttrImmuneOnNoEffect))
	sd, ok := tbl.Get("swords_dance")
	require.True(t, ok)
	st, stages, self, ok := sd.StatChange()
	require.True(t, ok)
	assert.Equal(t, stat.ATK, st)
	assert.Equal(t, 2, stages)
	assert.True(t, self)
	eq, ok := tbl.Get("earthquake")
	require.True(t, ok)
	assert.True(t, eq.Target.Spread())
}
