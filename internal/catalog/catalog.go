// Package catalog loads every read-only content table the battle engine
// consumes from one content directory.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/game/species"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// Catalog bundles the content tables of one ruleset.
type Catalog struct {
	Chart     *typechart.Chart
	Tags      *tag.Registry
	Moves     *move.Table
	Species   *species.Table
	Abilities *ability.Registry
	Quests    *quest.Catalog
	// Scripts backs scripted ability hooks; nil when no scripts were loaded.
	Scripts *scripting.Manager
}

// Load reads the content tree rooted at cfg.Dir:
//
//	typechart.yaml   optional chart override
//	tags/ moves/ species/ abilities/ quests/
//	scripts/abilities/   optional Lua hooks
//
// Precondition: cfg must be validated; logger must be non-nil.
// Postcondition: Returns a fully populated Catalog or the first load error.
func Load(cfg config.ContentConfig, logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{}
	var err error

	chartPath := filepath.Join(cfg.Dir, "typechart.yaml")
	if _, statErr := os.Stat(chartPath); statErr == nil {
		if c.Chart, err = typechart.LoadFile(chartPath); err != nil {
			return nil, fmt.Errorf("loading type chart: %w", err)
		}
	} else if errors.Is(statErr, os.ErrNotExist) {
		c.Chart = typechart.Default()
	} else {
		return nil, fmt.Errorf("checking type chart: %w", statErr)
	}

	if c.Tags, err = tag.LoadDirectory(filepath.Join(cfg.Dir, "tags")); err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	if c.Moves, err = move.LoadDirectory(filepath.Join(cfg.Dir, "moves")); err != nil {
		return nil, fmt.Errorf("loading moves: %w", err)
	}
	if c.Species, err = species.LoadDirectory(filepath.Join(cfg.Dir, "species")); err != nil {
		return nil, fmt.Errorf("loading species: %w", err)
	}
	if c.Quests, err = quest.LoadDirectory(filepath.Join(cfg.Dir, "quests")); err != nil {
		return nil, fmt.Errorf("loading quests: %w", err)
	}

	var scripts ability.ScriptCaller
	scriptDir := filepath.Join(cfg.Dir, "scripts", ability.ScriptNamespace)
	if info, statErr := os.Stat(scriptDir); statErr == nil && info.IsDir() {
		c.Scripts = scripting.NewManager(logger)
		if err := c.Scripts.LoadNamespace(ability.ScriptNamespace, scriptDir, cfg.ScriptInstructionLimit); err != nil {
			c.Scripts.Close()
			return nil, fmt.Errorf("loading ability scripts: %w", err)
		}
		scripts = c.Scripts
	}
	if c.Abilities, err = ability.LoadDirectory(filepath.Join(cfg.Dir, "abilities"), scripts); err != nil {
		c.Close()
		return nil, fmt.Errorf("loading abilities: %w", err)
	}

	logger.Info("content loaded",
		zap.String("dir", cfg.Dir),
		zap.Int("moves", len(c.Moves.IDs())),
		zap.Int("species", c.Species.Len()),
		zap.Int("quests", len(c.Quests.All())),
		zap.Int("tags", len(c.Tags.All())),
	)
	return c, nil
}

// Close releases the script VMs.
func (c *Catalog) Close() {
	if c.Scripts != nil {
		c.Scripts.Close()
	}
}

// Tag returns the tag definition with id, or nil when it is not registered.
func (c *Catalog) Tag(id string) *tag.Def {
	d, ok := c.Tags.Get(id)
	if !ok {
		return nil
	}
	return d
}
