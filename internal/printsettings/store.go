package printsettings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/repairdesk/internal/config"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	ErrSettingsNotFound = errors.New("print settings file not found")
	ErrInvalidDocument  = errors.New("invalid print settings document")
)

// Loader reads the print settings document.
type Loader interface {
	Load(ctx context.Context) (Settings, error)
}

// Store is a Loader that also exposes the raw document for administration.
type Store interface {
	Loader
	Raw(ctx context.Context) (map[string]any, error)
	Save(ctx context.Context, doc map[string]any) error
}

// FileStore keeps the settings document in a single file under the settings directory.
// Every Load reads the file again, so edits apply to the next request.
type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(cfg config.Config, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: cfg.SettingsPath(), log: log.Named("printsettings")}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}

	v := viper.New()
	v.SetConfigFile(f.path)
	if ext := strings.TrimPrefix(filepath.Ext(f.path), "."); ext == "" {
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("%w: %s", ErrSettingsNotFound, f.path)
		}
		return Settings{}, fmt.Errorf("read print settings: %w", err)
	}

	return New(v.AllSettings()), nil
}

// Raw returns the stored document with its original key casing.
func (f *FileStore) Raw(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, f.path)
		}
		return nil, err
	}

	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}

// Save validates doc and replaces the settings file atomically.
func (f *FileStore) Save(ctx context.Context, doc map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(doc); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".print-settings-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return err
	}

	f.log.Info("print settings saved", zap.String("path", f.path), zap.Int("keys", len(doc)))
	return nil
}

// Validate checks the two-tier shape of a settings document.
func Validate(doc map[string]any) error {
	if doc == nil {
		return fmt.Errorf("%w: document must be an object", ErrInvalidDocument)
	}
	for k, v := range doc {
		if !strings.EqualFold(k, InvoiceKey) {
			continue
		}
		if v == nil {
			continue
		}
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%w: %q must be an object", ErrInvalidDocument, k)
		}
	}
	return nil
}

type requestCacheKey struct{}

type requestCache struct {
	loaded   bool
	settings Settings
	fallback bool
}

// WithRequestCache returns a context in which LoadOrDefaults reads the
// settings at most once. The cache is not safe for concurrent use.
func WithRequestCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestCacheKey{}, &requestCache{})
}

// LoadOrDefaults returns the stored settings, or Defaults when they cannot be read.
// The second result reports whether the fallback was used.
func LoadOrDefaults(ctx context.Context, loader Loader, log *zap.Logger) (Settings, bool) {
	cache, _ := ctx.Value(requestCacheKey{}).(*requestCache)
	if cache != nil && cache.loaded {
		return cache.settings, cache.fallback
	}

	settings, fallback := loadOrDefaults(ctx, loader, log)
	if cache != nil {
		cache.loaded, cache.settings, cache.fallback = true, settings, fallback
	}
	return settings, fallback
}

func loadOrDefaults(ctx context.Context, loader Loader, log *zap.Logger) (Settings, bool) {
	if loader == nil {
		return Defaults(), true
	}
	settings, err := loader.Load(ctx)
	if err != nil {
		if log != nil {
			log.Warn("print settings unavailable, using defaults", zap.Error(err))
		}
		return Defaults(), true
	}
	return settings, false
}

var _ Store = (*FileStore)(nil)
