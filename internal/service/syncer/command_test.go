package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/daylight-sync/internal/config"
	domain "github.com/oshokin/daylight-sync/internal/domain/sun"
	staterepo "github.com/oshokin/daylight-sync/internal/repository/state"
	"github.com/oshokin/daylight-sync/internal/session"
)

// fakeLocator returns a fixed coordinate.
type fakeLocator struct {
	err error
}

func (f *fakeLocator) Locate(_ context.Context) (domain.Coordinate, error) {
	return domain.Coordinate{Lat: 59.3293, Lon: 18.0686}, f.err
}

// fakeResolver returns a fixed solar classification.
type fakeResolver struct {
	state domain.State
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, _ domain.Coordinate) (domain.State, error) {
	f.calls++
	return f.state, nil
}

// fakeSessions records fan-out invocations.
type fakeSessions struct {
	targets []domain.State
}

func (f *fakeSessions) SyncAll(_ context.Context, target domain.State) (int, error) {
	f.targets = append(f.targets, target)
	return 1, nil
}

// fixture assembles a runner over temp state and theme files.
type fixture struct {
	runner    *runner
	statePath string
	themePath string
	sessions  *fakeSessions
	resolver  *fakeResolver
}

// newFixture builds a runner with the provided initial file contents.
// An empty stateContents leaves the state file absent.
func newFixture(t *testing.T, stateContents, themeContents string, resolved domain.State) *fixture {
	t.Helper()

	dir := t.TempDir()

	statePath := filepath.Join(dir, "daylight.vim")
	if stateContents != "" {
		require.NoError(t, os.WriteFile(statePath, []byte(stateContents), 0o600))
	}

	themePath := filepath.Join(dir, "alacritty.yml")
	require.NoError(t, os.WriteFile(themePath, []byte(themeContents), 0o644))

	sessions := &fakeSessions{}
	resolver := &fakeResolver{state: resolved}

	return &fixture{
		runner: &runner{
			locator:         &fakeLocator{},
			resolver:        resolver,
			repository:      staterepo.NewFileRepository(statePath),
			sessions:        sessions,
			themeConfigPath: themePath,
		},
		statePath: statePath,
		themePath: themePath,
		sessions:  sessions,
		resolver:  resolver,
	}
}

const themeDocument = "colors: *themealight_variant\nbackground: \"#000000\"\n"

// TestRunAppliesStateChange covers the full transition path:
// persisted Up, resolved Down, so sessions, state file and theme all update.
func TestRunAppliesStateChange(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "set bg=light\n", themeDocument, domain.Down)

	require.NoError(t, f.runner.run(context.Background()))

	require.Equal(t, []domain.State{domain.Down}, f.sessions.targets)

	stateContents, err := os.ReadFile(f.statePath)
	require.NoError(t, err)
	require.Equal(t, "set bg=dark\n", string(stateContents))

	themeContents, err := os.ReadFile(f.themePath)
	require.NoError(t, err)
	require.Equal(t, "colors: *themeadark_variant\nbackground: \"#000000\"\n", string(themeContents))
}

// TestRunIdempotentNoOp verifies an unchanged state touches nothing.
func TestRunIdempotentNoOp(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "set bg=light\n", themeDocument, domain.Up)

	require.NoError(t, f.runner.run(context.Background()))

	require.Empty(t, f.sessions.targets)

	themeContents, err := os.ReadFile(f.themePath)
	require.NoError(t, err)
	require.Equal(t, themeDocument, string(themeContents))

	stateContents, err := os.ReadFile(f.statePath)
	require.NoError(t, err)
	require.Equal(t, "set bg=light\n", string(stateContents))
}

// TestRunBootstrapsMissingStateFile verifies first-run behavior: the state
// file is created with the light directive and treated as current state Up.
func TestRunBootstrapsMissingStateFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", themeDocument, domain.Up)

	require.NoError(t, f.runner.run(context.Background()))

	stateContents, err := os.ReadFile(f.statePath)
	require.NoError(t, err)
	require.Equal(t, "set bg=light\n", string(stateContents))

	// Bootstrap state equals the resolved state, so this run is a no-op.
	require.Empty(t, f.sessions.targets)
}

// TestRunForcedStateSkipsResolution ensures a forced state bypasses
// geolocation and solar resolution entirely.
func TestRunForcedStateSkipsResolution(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "set bg=light\n", themeDocument, domain.Up)
	force := domain.Down
	f.runner.force = &force
	f.runner.locator = &fakeLocator{err: errors.New("must not be called")}

	require.NoError(t, f.runner.run(context.Background()))

	require.Zero(t, f.resolver.calls)
	require.Equal(t, []domain.State{domain.Down}, f.sessions.targets)
}

// TestRunSurvivesSessionFailures replays the degraded fan-out scenario:
// one session refuses the connection, yet files are still updated.
func TestRunSurvivesSessionFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "set bg=light\n", themeDocument, domain.Down)

	root := t.TempDir()
	for _, name := range []string{"nvimA", "nvimB"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, name, "0"), nil, 0o600))
	}

	refused := filepath.Join(root, "nvimA", "0")
	dial := func(socket string, _ time.Duration) (session.Commander, error) {
		if socket == refused {
			return nil, errors.New("connection refused")
		}

		return &acceptingCommander{}, nil
	}

	f.runner.sessions = session.NewSynchronizer(
		filepath.Join(root, "nvim*", "0"), time.Second, session.WithDialer(dial))

	require.NoError(t, f.runner.run(context.Background()))

	stateContents, err := os.ReadFile(f.statePath)
	require.NoError(t, err)
	require.Equal(t, "set bg=dark\n", string(stateContents))

	themeContents, err := os.ReadFile(f.themePath)
	require.NoError(t, err)
	require.Equal(t, "colors: *themeadark_variant\nbackground: \"#000000\"\n", string(themeContents))
}

// TestRunPropagatesThemeConfigAbsence ensures a missing theme config aborts the run.
func TestRunPropagatesThemeConfigAbsence(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "set bg=light\n", themeDocument, domain.Down)
	f.runner.themeConfigPath = filepath.Join(t.TempDir(), "absent.yml")

	require.Error(t, f.runner.run(context.Background()))
}

// TestNewRunnerAppliesOverrides verifies settings load and CLI path overrides.
func TestNewRunnerAppliesOverrides(t *testing.T) {
	dir := t.TempDir()

	settingsPath := filepath.Join(dir, "settings.yaml")
	cfg := config.Default()
	cfg.ThemeConfigPath = filepath.Join(dir, "from-settings.yml")
	require.NoError(t, config.Save(settingsPath, cfg))

	override := filepath.Join(dir, "override.yml")
	r, err := newRunner(&Options{
		ConfigPath:      settingsPath,
		ThemeConfigPath: override,
		StateFilePath:   filepath.Join(dir, "state.vim"),
	})
	require.NoError(t, err)
	require.Equal(t, override, r.themeConfigPath)
}

// acceptingCommander acknowledges every command with an empty reply.
type acceptingCommander struct{}

func (acceptingCommander) Send(command string) (string, error) {
	if command == "colorscheme" {
		return "default\n", nil
	}

	return "", nil
}

func (acceptingCommander) Close() error { return nil }
