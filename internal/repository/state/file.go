package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oshokin/daylight-sync/internal/config"
	domain "github.com/oshokin/daylight-sync/internal/domain/sun"
	"github.com/oshokin/daylight-sync/internal/logger"
)

// Repository defines persistence operations for the last applied sun state.
type Repository interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
}

// FileRepository persists the last applied state as a single background
// directive line on disk. The file doubles as an editor source file, so the
// stored content is the directive itself, not a serialized structure.
type FileRepository struct {
	// path is the filesystem location of the state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// darkToken classifies stored content. Substring matching is intentional:
// it tolerates trailing whitespace and newline variation in the file.
const darkToken = "dark"

// NewFileRepository creates a repository that reads/writes the directive at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the last applied state from disk.
// A missing file is not an error: it is bootstrapped with the light directive
// and a console notice, and the bootstrap state is returned.
func (r *FileRepository) Load(ctx context.Context) (domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r.bootstrap(ctx)
		}

		return domain.Up, fmt.Errorf("read state file: %w", err)
	}

	if strings.Contains(string(contents), darkToken) {
		return domain.Down, nil
	}

	return domain.Up, nil
}

// Save writes the canonical directive line for the state to disk.
func (r *FileRepository) Save(_ context.Context, state domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.write(state)
}

// bootstrap creates the state file with the default light directive.
func (r *FileRepository) bootstrap(ctx context.Context) (domain.State, error) {
	logger.Warnf(ctx, "State file %s is missing, creating it with %q. "+
		"Source it from your editor config for this to work.", r.path, domain.Up.Directive())

	if err := r.write(domain.Up); err != nil {
		return domain.Up, err
	}

	return domain.Up, nil
}

// write truncates the file and stores exactly one directive line.
func (r *FileRepository) write(state domain.State) error {
	data := []byte(state.Directive() + "\n")
	if err := os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
