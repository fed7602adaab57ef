package printsettings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smallbiznis/repairdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(config.Config{SettingsDir: dir, SettingsFile: "print-settings.json"}, zap.NewNop())
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrSettingsNotFound)

	settings, fallback := LoadOrDefaults(context.Background(), store, zap.NewNop())
	assert.True(t, fallback)
	assert.Equal(t, "Invoice", String(settings, "title", ""))
	assert.Equal(t, "Repair Center", String(settings, "company.name", ""))
	assert.Equal(t, 10, Int(settings, "margins.top", 0))
}

func TestFileStoreLoadMalformedFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	_, err := store.Load(context.Background())
	require.Error(t, err)

	_, fallback := LoadOrDefaults(context.Background(), store, nil)
	assert.True(t, fallback)
}

func TestFileStoreSaveThenLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := map[string]any{
		"title": "Repair Invoice",
		"financial": map[string]any{
			"showTax": true,
			"taxRate": 14,
		},
		"invoice": map[string]any{
			"financial": map[string]any{"showTax": false},
		},
	}
	require.NoError(t, store.Save(ctx, doc))

	settings, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, Bool(settings, "financial.showTax", true))
	assert.Equal(t, 14.0, Float(settings, "financial.taxRate", 0))
	assert.Equal(t, "Repair Invoice", String(settings, "title", ""))

	raw, err := store.Raw(ctx)
	require.NoError(t, err)
	assert.Contains(t, raw, "financial")
	assert.Contains(t, raw["financial"], "showTax")

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreRejectsInvalidDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.ErrorIs(t, store.Save(ctx, nil), ErrInvalidDocument)
	require.ErrorIs(t, store.Save(ctx, map[string]any{"invoice": "flat"}), ErrInvalidDocument)
	require.NoError(t, store.Save(ctx, map[string]any{"Invoice": map[string]any{}}))
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type countingLoader struct {
	loads int
	doc   map[string]any
	err   error
}

func (l *countingLoader) Load(context.Context) (Settings, error) {
	l.loads++
	if l.err != nil {
		return Settings{}, l.err
	}
	return New(l.doc), nil
}

func TestRequestCacheLoadsOnce(t *testing.T) {
	loader := &countingLoader{doc: map[string]any{"language": "ar"}}
	ctx := WithRequestCache(context.Background())

	first, fallback := LoadOrDefaults(ctx, loader, nil)
	assert.False(t, fallback)
	second, _ := LoadOrDefaults(ctx, loader, nil)

	assert.Equal(t, 1, loader.loads)
	assert.Equal(t, "ar", String(first, "language", ""))
	assert.Equal(t, "ar", String(second, "language", ""))

	LoadOrDefaults(context.Background(), loader, nil)
	assert.Equal(t, 2, loader.loads)
}

func TestRequestCacheKeepsFallback(t *testing.T) {
	loader := &countingLoader{err: ErrSettingsNotFound}
	ctx := WithRequestCache(context.Background())

	_, fallback := LoadOrDefaults(ctx, loader, zap.NewNop())
	assert.True(t, fallback)
	settings, fallback := LoadOrDefaults(ctx, loader, zap.NewNop())
	assert.True(t, fallback)
	assert.Equal(t, "Invoice", String(settings, "title", ""))
	assert.Equal(t, 1, loader.loads)
}
