// Package main runs batches of seeded battles between two configured
// parties and reports the outcome statistics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/battlecore/internal/catalog"
	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/modifier"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/lifecycle"
	"github.com/cory-johannsen/battlecore/internal/observability"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
)

// runner holds what every battle of one simulation shares.
type runner struct {
	cfg     config.Config
	cat     *catalog.Catalog
	policy  ai.Policy
	engine  *combat.Engine
	results *postgres.ResultRepository
	logger  *zap.Logger
	tally   *summary
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	record := flag.Bool("record", false, "record every battle result in PostgreSQL")
	session := flag.String("session", "", "run battles in sequence sharing the modifiers saved under this session id")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cat, err := catalog.Load(cfg.Content, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	defer cat.Close()
	logger.Info("content loaded",
		zap.Int("moves", len(cat.Moves.IDs())),
		zap.Int("species", cat.Species.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	policy, err := ai.ParsePolicy(cfg.Battle.AIPolicy)
	if err != nil {
		logger.Fatal("parsing ai policy", zap.Error(err))
	}

	r := &runner{
		cfg:    cfg,
		cat:    cat,
		policy: policy,
		engine: combat.NewEngine(),
		logger: logger,
		tally:  &summary{},
	}

	var (
		pool  *postgres.Pool
		store *postgres.ModifierRepository
	)
	if *record || *session != "" {
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		store, r.results = pool.Stores()
		if !*record {
			r.results = nil
		}
	}

	lc := lifecycle.NewLifecycle(logger)
	lc.Add("simulation", lifecycle.ContextService(ctx, func(ctx context.Context) error {
		if *session != "" {
			return r.campaign(ctx, store, *session)
		}
		return r.batch(ctx)
	}))
	if err := lc.Run(ctx); err != nil {
		if !lifecycle.Interrupted(err) {
			logger.Fatal("simulation failed", zap.Error(err))
		}
		logger.Warn("simulation interrupted; reporting the battles that finished")
	}

	if err := r.tally.write(os.Stdout); err != nil {
		logger.Error("writing summary", zap.Error(err))
	}
	logger.Info("simulation complete",
		zap.Int("battles", r.tally.count()),
		zap.Float64("mean_turns", r.tally.meanTurns()),
		zap.Duration("elapsed", time.Since(start)),
	)
	if r.results != nil {
		r.reportHistory(pool)
	}
}

// reportHistory logs the win counts of every battle recorded so far.
func (r *runner) reportHistory(pool *postgres.Pool) {
	ctx := context.Background()
	if err := pool.Health(ctx, 5*time.Second); err != nil {
		r.logger.Warn("database unavailable; skipping recorded history", zap.Error(err))
		return
	}
	wins, err := r.results.WinCounts(ctx)
	if err != nil {
		r.logger.Error("reading recorded wins", zap.Error(err))
		return
	}
	r.logger.Info("recorded history",
		zap.Int("player_wins", wins[field.SidePlayer]),
		zap.Int("enemy_wins", wins[field.SideEnemy]),
		zap.Int("draws", wins[field.SideBoth]),
	)
}

// batch runs every battle independently, at most Concurrency at a time.
func (r *runner) batch(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Simulation.Concurrency)
	for i := range r.cfg.Simulation.Battles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.fight(ctx, i, nil)
		})
	}
	return g.Wait()
}

// campaign runs the battles one after another against a single session
// registry, so lapsing modifiers and quest progress carry over, then saves it.
func (r *runner) campaign(ctx context.Context, store *postgres.ModifierRepository, sessionID string) error {
	reg := modifier.NewRegistry(r.logger)
	err := reg.LoadFrom(ctx, store, sessionID, r.cat.Quests)
	switch {
	case errors.Is(err, modifier.ErrSnapshotNotFound):
		r.logger.Info("starting a new session", zap.String("session", sessionID))
		for _, def := range r.cat.Quests.All() {
			reg.AddQuest(def)
		}
	case err != nil:
		return err
	}
	for i := range r.cfg.Simulation.Battles {
		if ctx.Err() != nil {
			break
		}
		if err := r.fight(ctx, i, reg); err != nil {
			return err
		}
	}
	return reg.SaveTo(context.WithoutCancel(ctx), store, sessionID)
}

// fight builds and resolves battle i. reg is the session registry, or nil
// for a fresh one.
func (r *runner) fight(ctx context.Context, i int, reg *modifier.Registry) error {
	player, err := r.party(r.cfg.Simulation.Player, field.SidePlayer)
	if err != nil {
		return err
	}
	enemy, err := r.party(r.cfg.Simulation.Enemy, field.SideEnemy)
	if err != nil {
		return err
	}
	var seed uint64
	if r.cfg.Battle.Seed != 0 {
		seed = r.cfg.Battle.Seed + uint64(i)
	}
	b, err := combat.NewBattle(r.cat, player, enemy, combat.Options{
		Seed:      seed,
		Modes:     r.cfg.Battle.Modes,
		Double:    r.cfg.Battle.Double,
		RunType:   quest.RunType(r.cfg.Battle.RunType),
		Modifiers: reg,
		Chooser:   ai.NewRegistry(r.policy),
	}, r.logger)
	if err != nil {
		return fmt.Errorf("battle %d: %w", i, err)
	}
	if err := r.engine.Register(b); err != nil {
		return err
	}
	if err := r.engine.Run(b, r.cfg.Simulation.TurnCap); err != nil {
		return err
	}
	r.tally.record(b.Winner(), b.Turn)
	if r.results == nil {
		return nil
	}
	return r.results.Record(ctx, postgres.BattleResult{
		BattleID: b.ID,
		Seed:     b.Streams.Seed(),
		Winner:   b.Winner(),
		Turns:    b.Turn,
		RunType:  string(b.RunType),
		AIPolicy: string(r.policy),
	})
}

// party builds combatants for species ids. The enemy leader becomes a boss
// when the configured segment count is above 1.
func (r *runner) party(ids []string, side field.Side) ([]*combat.Combatant, error) {
	out := make([]*combat.Combatant, 0, len(ids))
	for i, id := range ids {
		sp, err := r.cat.Species.Get(id)
		if err != nil {
			return nil, fmt.Errorf("building party: %w", err)
		}
		spec := combat.Spec{Species: sp, Side: side, Level: r.cfg.Simulation.Level}
		if side == field.SideEnemy && i == 0 {
			spec.BossSegments = r.cfg.Battle.BossSegments
		}
		out = append(out, combat.NewCombatant(spec))
	}
	return out, nil
}
