// Package config provides Viper-based configuration loading for the battle engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/battlecore/internal/game/field"
)

// DatabaseConfig holds PostgreSQL connection settings for the modifier save store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the YAML catalogs and Lua scripts.
type ContentConfig struct {
	// Dir is the content root holding typechart.yaml, tags/, moves/, species/,
	// abilities/, quests/ and scripts/.
	Dir string `mapstructure:"dir"`
	// ScriptInstructionLimit bounds each Lua hook call; 0 disables the limit.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// BattleConfig holds the rules of the battles a run creates.
type BattleConfig struct {
	// Seed fixes the battle seed; 0 draws a fresh seed per battle.
	Seed uint64 `mapstructure:"seed"`
	// BossSegments is the segment count given to boss enemies.
	BossSegments int         `mapstructure:"boss_segments"`
	Modes        field.Modes `mapstructure:"modes"`
	// AIPolicy is the enemy move-choice policy: "random", "smart_random" or "smart".
	AIPolicy string `mapstructure:"ai_policy"`
	// RunType is the game mode quests are counted in.
	RunType string `mapstructure:"run_type"`
	// Double selects two-on-two battles.
	Double bool `mapstructure:"double"`
}

// SimulationConfig drives the batch simulator.
type SimulationConfig struct {
	Battles     int `mapstructure:"battles"`
	Concurrency int `mapstructure:"concurrency"`
	// TurnCap ends a battle as a draw after this many turns.
	TurnCap int `mapstructure:"turn_cap"`
	Level   int `mapstructure:"level"`
	// Player and Enemy are the species ids of each side's party.
	Player []string `mapstructure:"player"`
	Enemy  []string `mapstructure:"enemy"`
}

// Config is the top-level application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Content    ContentConfig    `mapstructure:"content"`
	Battle     BattleConfig     `mapstructure:"battle"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateDatabase(c.Database),
		validateLogging(c.Logging),
		validateContent(c.Content),
		validateBattle(c.Battle),
		validateSimulation(c.Simulation),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.BossSegments < 1 {
		errs = append(errs, fmt.Sprintf("battle.boss_segments must be >= 1, got %d", b.BossSegments))
	}
	validPolicies := map[string]bool{"random": true, "smart_random": true, "smart": true}
	if !validPolicies[b.AIPolicy] {
		errs = append(errs, fmt.Sprintf("battle.ai_policy must be one of [random, smart_random, smart], got %q", b.AIPolicy))
	}
	validRuns := map[string]bool{"any": true, "classic": true, "non_classic": true, "nuzlocke": true, "nightmare": true}
	if !validRuns[b.RunType] {
		errs = append(errs, fmt.Sprintf("battle.run_type must be one of [any, classic, non_classic, nuzlocke, nightmare], got %q", b.RunType))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Battles < 1 {
		errs = append(errs, fmt.Sprintf("simulation.battles must be >= 1, got %d", s.Battles))
	}
	if s.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("simulation.concurrency must be >= 1, got %d", s.Concurrency))
	}
	if s.TurnCap < 1 {
		errs = append(errs, fmt.Sprintf("simulation.turn_cap must be >= 1, got %d", s.TurnCap))
	}
	if s.Level < 1 || s.Level > 100 {
		errs = append(errs, fmt.Sprintf("simulation.level must be 1-100, got %d", s.Level))
	}
	if len(s.Player) == 0 || len(s.Enemy) == 0 {
		errs = append(errs, "simulation.player and simulation.enemy must each list at least one species")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with BATTLE_ prefix
	v.SetEnvPrefix("BATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "battle")
	v.SetDefault("database.password", "battle")
	v.SetDefault("database.name", "battle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.script_instruction_limit", 100000)

	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.boss_segments", 1)
	v.SetDefault("battle.modes.no_resistances", false)
	v.SetDefault("battle.modes.inverted_types", false)
	v.SetDefault("battle.modes.no_stab", false)
	v.SetDefault("battle.ai_policy", "smart_random")
	v.SetDefault("battle.run_type", "classic")
	v.SetDefault("battle.double", false)

	v.SetDefault("simulation.battles", 100)
	v.SetDefault("simulation.concurrency", 4)
	v.SetDefault("simulation.turn_cap", 200)
	v.SetDefault("simulation.level", 50)
	v.SetDefault("simulation.player", []string{"garchomp"})
	v.SetDefault("simulation.enemy", []string{"snorlax"})
}
