package diffs

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-locators/internal/hydrate"
	"github.com/goliatone/go-locators/layering"
	"github.com/goliatone/go-locators/version"
)

var diffExtensions = []string{".yaml", ".yml", ".json"}

// LoadError reports a catalogued diff whose payload could not be read or
// decoded. It matches ErrNotFound with errors.Is.
type LoadError struct {
	Version version.Version
	Source  string
	Err     error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("diffs: load %s from %s: %v", e.Version, e.Source, e.Err)
}

func (e *LoadError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FSRepository reads diffs from files named after their version inside one
// directory of an fs.FS. The directory is scanned once; decoded payloads are
// memoized.
type FSRepository struct {
	fsys    fs.FS
	dir     string
	decoder *hydrate.Decoder

	mu       sync.Mutex
	scanned  bool
	scanErr  error
	versions []version.Version
	files    map[string]string
	loaded   map[string]map[string]any
}

// NewFSRepository scans dir within fsys. Use "." for the root.
func NewFSRepository(fsys fs.FS, dir string, opts ...Option) *FSRepository {
	if dir == "" {
		dir = "."
	}
	return &FSRepository{
		fsys:    fsys,
		dir:     path.Clean(dir),
		decoder: applyOptions(opts).decoder(),
		loaded:  map[string]map[string]any{},
	}
}

// List returns the catalogued versions in directory order.
func (r *FSRepository) List(ctx context.Context) ([]version.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.scanLocked(); err != nil {
		return nil, err
	}
	return append([]version.Version(nil), r.versions...), nil
}

// Load decodes the diff file catalogued for v.
func (r *FSRepository) Load(ctx context.Context, v version.Version) (Diff, error) {
	if err := ctx.Err(); err != nil {
		return Diff{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.scanLocked(); err != nil {
		return Diff{}, err
	}
	key := v.Key()
	file, ok := r.files[key]
	if !ok {
		return Diff{}, notFound(v)
	}
	tree, ok := r.loaded[key]
	if !ok {
		raw, err := fs.ReadFile(r.fsys, file)
		if err != nil {
			return Diff{}, &LoadError{Version: v, Source: file, Err: err}
		}
		tree, err = r.decoder.DecodeBytes(hydrate.Context{Source: file, Version: v.String()}, raw)
		if err != nil {
			return Diff{}, &LoadError{Version: v, Source: file, Err: err}
		}
		r.loaded[key] = tree
	}
	return Diff{
		Version:  v,
		Override: layering.Clone(tree),
		Source:   file,
	}, nil
}

func (r *FSRepository) scanLocked() error {
	if r.scanned {
		return r.scanErr
	}
	r.scanned = true
	if r.fsys == nil {
		r.scanErr = fmt.Errorf("diffs: filesystem is required")
		return r.scanErr
	}

	entries, err := fs.ReadDir(r.fsys, r.dir)
	if err != nil {
		r.scanErr = fmt.Errorf("diffs: scan %s: %w", r.dir, err)
		return r.scanErr
	}

	files := make(map[string]string, len(entries))
	versions := make([]version.Version, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := versionName(entry.Name())
		if !ok {
			continue
		}
		v, err := version.Parse(name)
		if err != nil {
			continue
		}
		file := path.Join(r.dir, entry.Name())
		if existing, exists := files[v.Key()]; exists {
			r.scanErr = fmt.Errorf("%w: %s and %s", ErrDuplicateVersion, existing, file)
			return r.scanErr
		}
		files[v.Key()] = file
		versions = append(versions, v)
	}
	r.files = files
	r.versions = versions
	return nil
}

func versionName(file string) (string, bool) {
	lower := strings.ToLower(file)
	for _, ext := range diffExtensions {
		if strings.HasSuffix(lower, ext) {
			return file[:len(file)-len(ext)], true
		}
	}
	return "", false
}
