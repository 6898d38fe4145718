package taxonomy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lawlens/internal/embed/embedtest"
	"github.com/ppiankov/lawlens/internal/model"
)

func TestDefaultCatalog_CoversEveryType(t *testing.T) {
	catalog := DefaultCatalog()
	require.NoError(t, Validate(catalog))

	types := model.AllClauseTypes()
	require.Len(t, catalog, len(types))
	for i, e := range catalog {
		assert.Equal(t, types[i], e.Type, "catalog order must follow clause type order")
		assert.Len(t, e.Anchors, 3, e.Type.String())
	}
	assert.Equal(t, model.ClauseOther, catalog[len(catalog)-1].Type)
}

func TestDefaultCatalog_ReturnsCopy(t *testing.T) {
	a := DefaultCatalog()
	a[0].Anchors[0] = "mutated"
	b := DefaultCatalog()
	assert.NotEqual(t, "mutated", b[0].Anchors[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog []Entry
	}{
		{"empty", nil},
		{"invalid type", []Entry{{Type: model.ClauseType(99), Anchors: []string{"x"}}}},
		{"duplicate", []Entry{
			{Type: model.ClauseWaiver, Anchors: []string{"x"}},
			{Type: model.ClauseWaiver, Anchors: []string{"y"}},
		}},
		{"no anchors", []Entry{{Type: model.ClauseNotices}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate(tt.catalog))
		})
	}
}

func TestNew_EncodesOnePerEntry(t *testing.T) {
	enc := embedtest.NewKeyword(nil)
	set, err := New(context.Background(), DefaultCatalog(), enc)
	require.NoError(t, err)

	assert.Equal(t, len(DefaultCatalog()), enc.Calls())
	assert.Equal(t, len(DefaultCatalog()), set.Len())
	assert.Equal(t, model.AllClauseTypes(), set.Types())

	for _, typ := range set.Types() {
		assert.Equal(t, len(set.Anchors(typ)), len(set.Vectors(typ)), typ.String())
	}
}

func TestNew_EncodeFailure(t *testing.T) {
	_, err := New(context.Background(), DefaultCatalog(), embedtest.NewFailing(2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, embedtest.ErrEncode))
	assert.Contains(t, err.Error(), "Indemnification")
}

func TestNew_CountMismatch(t *testing.T) {
	_, err := New(context.Background(), DefaultCatalog(), embedtest.NewShort(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 2 vectors for 3 anchors")
}

func TestAnchorSet_IsImmutable(t *testing.T) {
	set, err := New(context.Background(), DefaultCatalog(), embedtest.NewKeyword(nil))
	require.NoError(t, err)

	types := set.Types()
	types[0] = model.ClauseWaiver
	assert.Equal(t, model.ClauseConfidentiality, set.Types()[0])

	anchors := set.Anchors(model.ClauseTermination)
	anchors[0] = "changed"
	assert.NotEqual(t, "changed", set.Anchors(model.ClauseTermination)[0])
}

func TestAnchorSet_BestScore(t *testing.T) {
	enc := embedtest.NewKeyword(nil)
	set, err := New(context.Background(), DefaultCatalog(), enc)
	require.NoError(t, err)

	vec := enc.Vector("Each party shall indemnify the other party.")
	assert.InDelta(t, 1.0, set.BestScore(model.ClauseIndemnification, vec), 1e-9)
	assert.InDelta(t, 0.0, set.BestScore(model.ClauseWaiver, vec), 1e-9)
	assert.Equal(t, -1.0, set.BestScore(model.ClauseType(99), vec))
}

func TestLoadCatalog_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
governing law:
  - "This Agreement is governed by the laws of England and Wales."
Waiver:
  - "No failure to exercise a right operates as a waiver."
  - "Rights are cumulative."
`), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog, len(DefaultCatalog()))

	byType := map[model.ClauseType][]string{}
	for _, e := range catalog {
		byType[e.Type] = e.Anchors
	}
	assert.Equal(t, []string{"This Agreement is governed by the laws of England and Wales."}, byType[model.ClauseGoverningLaw])
	assert.Len(t, byType[model.ClauseWaiver], 2)
	assert.Len(t, byType[model.ClauseTermination], 3)
}

func TestLoadCatalog_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("Warranty:\n  - \"x\"\n"), 0o644))
	_, err = LoadCatalog(unknown)
	assert.ErrorContains(t, err, "unknown clause type")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("Notices: []\n"), 0o644))
	_, err = LoadCatalog(empty)
	assert.ErrorContains(t, err, "no anchors")
}
