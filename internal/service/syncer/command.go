package syncer

import (
	"context"
	"fmt"

	"github.com/oshokin/daylight-sync/internal/config"
	domain "github.com/oshokin/daylight-sync/internal/domain/sun"
	"github.com/oshokin/daylight-sync/internal/geo"
	"github.com/oshokin/daylight-sync/internal/logger"
	staterepo "github.com/oshokin/daylight-sync/internal/repository/state"
	"github.com/oshokin/daylight-sync/internal/session"
	"github.com/oshokin/daylight-sync/internal/solar"
	"github.com/oshokin/daylight-sync/internal/theme"
)

// Options are inputs accepted by the sync entry point.
// Non-empty path fields override the corresponding settings.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ThemeConfigPath overrides the theme config file to rewrite.
	ThemeConfigPath string
	// StateFilePath overrides the persisted state file.
	StateFilePath string
	// InitFilePath overrides the editor init file path.
	// Accepted for compatibility with older setups; the sync logic does not read it.
	InitFilePath string
	// Force skips solar resolution and applies the given state directly.
	Force *domain.State
}

// locator resolves the caller's geographic coordinate.
type locator interface {
	Locate(ctx context.Context) (domain.Coordinate, error)
}

// stateResolver classifies the current moment for a coordinate.
type stateResolver interface {
	Resolve(ctx context.Context, coordinate domain.Coordinate) (domain.State, error)
}

// sessionSynchronizer fans a state change out to live sessions.
type sessionSynchronizer interface {
	SyncAll(ctx context.Context, target domain.State) (int, error)
}

// runner holds the collaborators for a single sync execution.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	force           *domain.State
	locator         locator
	resolver        stateResolver
	repository      staterepo.Repository
	sessions        sessionSynchronizer
	themeConfigPath string
}

// Run executes one synchronization pass and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "daylight-sync")

	r, err := newRunner(opts)
	if err != nil {
		return err
	}

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Sync run failed", "error", err)
		return err
	}

	return nil
}

// newRunner loads settings, applies CLI overrides and builds the collaborators.
func newRunner(opts *Options) (*runner, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.ThemeConfigPath != "" {
		cfg.ThemeConfigPath = opts.ThemeConfigPath
	}

	if opts.StateFilePath != "" {
		cfg.StateFilePath = opts.StateFilePath
	}

	if opts.InitFilePath != "" {
		cfg.InitFilePath = opts.InitFilePath
	}

	themeConfigPath, err := config.ExpandPath(cfg.ThemeConfigPath)
	if err != nil {
		return nil, err
	}

	stateFilePath, err := config.ExpandPath(cfg.StateFilePath)
	if err != nil {
		return nil, err
	}

	return &runner{
		force:           opts.Force,
		locator:         geo.NewLocator(cfg.GeolocationURL, cfg.Timeout),
		resolver:        solar.NewResolver(cfg.SolarURL, cfg.Timeout),
		repository:      staterepo.NewFileRepository(stateFilePath),
		sessions:        session.NewSynchronizer(cfg.SocketGlob, cfg.Timeout),
		themeConfigPath: themeConfigPath,
	}, nil
}

// run determines the target state and applies it everywhere if it changed.
func (r *runner) run(ctx context.Context) error {
	target, err := r.determineTarget(ctx)
	if err != nil {
		return err
	}

	current, err := r.repository.Load(ctx)
	if err != nil {
		return err
	}

	if target == current {
		logger.InfoKV(ctx, "State unchanged, nothing to do", "state", target.String())
		return nil
	}

	logger.InfoKV(ctx, "Applying state change",
		"from", current.String(),
		"to", target.String())

	// Live sessions first so the user sees the change immediately.
	// Their failures never abort the run.
	if _, err = r.sessions.SyncAll(ctx, target); err != nil {
		return err
	}

	if err = r.repository.Save(ctx, target); err != nil {
		return err
	}

	if err = theme.Rewrite(ctx, r.themeConfigPath, target); err != nil {
		return err
	}

	return nil
}

// determineTarget returns the forced state when provided,
// otherwise resolves it from geolocation and solar events.
func (r *runner) determineTarget(ctx context.Context) (domain.State, error) {
	if r.force != nil {
		logger.InfoKV(ctx, "Using forced state", "state", r.force.String())
		return *r.force, nil
	}

	coordinate, err := r.locator.Locate(ctx)
	if err != nil {
		return domain.Up, fmt.Errorf("locate: %w", err)
	}

	target, err := r.resolver.Resolve(ctx, coordinate)
	if err != nil {
		return domain.Up, fmt.Errorf("resolve solar state: %w", err)
	}

	return target, nil
}
