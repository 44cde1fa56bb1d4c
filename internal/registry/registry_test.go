package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navdash/internal/archive"
	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

func loadArchive(t *testing.T) *archive.Archive {
	t.Helper()
	a, err := archive.Load()
	require.NoError(t, err)
	return a
}

func defaultEntries() []common.SchemeEntry {
	return []common.SchemeEntry{
		{Name: "Total Portfolio", Kind: "composite", Components: []string{"Scheme QTF", "Scheme QAW"}, Active: true},
		{Name: "Scheme QAW", Kind: "live", SystemTag: "ZEN_QAW", Active: true, StartDate: "2024-01-01"},
		{Name: "Scheme QTF", Kind: "Frozen"},
	}
}

func defaultAccounts() []common.AccountConfig {
	return []common.AccountConfig{
		{ID: "ACC-001", Schemes: []string{"Total Portfolio", "Scheme QAW", "Scheme QTF"}},
		{ID: "ACC-002", Schemes: []string{"Scheme QAW"}},
	}
}

func TestNew_ResolvesSources(t *testing.T) {
	r, err := New(defaultEntries(), defaultAccounts(), loadArchive(t))
	require.NoError(t, err)

	schemes, err := r.SchemesFor(context.Background(), "ACC-001")
	require.NoError(t, err)
	require.Len(t, schemes, 3)
	assert.Equal(t, "Total Portfolio", schemes[0].DisplayName)
	assert.Equal(t, "Scheme QAW", schemes[1].DisplayName)
	assert.Equal(t, "Scheme QTF", schemes[2].DisplayName)

	live, ok := schemes[1].Source.(models.LiveSource)
	require.True(t, ok)
	assert.Equal(t, "ZEN_QAW", live.SystemTag)
	assert.Equal(t, "2024-01-01", models.FormatDate(live.StartDate))
	assert.Equal(t, 2, schemes[1].AccountCount)

	frozen, ok := schemes[2].Source.(models.FrozenSource)
	require.True(t, ok)
	require.NotNil(t, frozen.Bundle)
	assert.Equal(t, "QTF", schemes[2].SystemTag)
	assert.False(t, schemes[2].IsActive)
	assert.Equal(t, 1, schemes[2].AccountCount)

	comp, ok := schemes[0].Source.(models.CompositeSource)
	require.True(t, ok)
	require.Len(t, comp.Components, 2)
	assert.Equal(t, "Scheme QTF", comp.Components[0].Name)
	assert.Equal(t, models.SchemeKindFrozen, comp.Components[0].Source.Kind())
	assert.Equal(t, models.SchemeKindLive, comp.Components[1].Source.Kind())
	assert.Equal(t, models.SchemeKindComposite, schemes[0].Kind())
}

func TestSchemesFor_UnknownAccount(t *testing.T) {
	r, err := New(defaultEntries(), defaultAccounts(), loadArchive(t))
	require.NoError(t, err)

	_, err = r.SchemesFor(context.Background(), "ACC-404")
	assert.True(t, errors.Is(err, interfaces.ErrUnknownAccount))
}

func TestScheme_Lookup(t *testing.T) {
	r, err := New(defaultEntries(), defaultAccounts(), loadArchive(t))
	require.NoError(t, err)

	sc, err := r.Scheme(context.Background(), "Scheme QAW")
	require.NoError(t, err)
	assert.Equal(t, "ZEN_QAW", sc.SystemTag)

	_, err = r.Scheme(context.Background(), "Scheme XYZ")
	assert.True(t, errors.Is(err, interfaces.ErrUnknownScheme))

	all := r.Schemes()
	require.Len(t, all, 3)
	assert.Equal(t, "Total Portfolio", all[0].DisplayName)
	assert.ElementsMatch(t, []string{"ACC-001", "ACC-002"}, r.Accounts())
}

func TestNew_ValidationErrors(t *testing.T) {
	arc := loadArchive(t)
	tests := []struct {
		name     string
		entries  []common.SchemeEntry
		accounts []common.AccountConfig
		want     string
	}{
		{
			name:    "missing name",
			entries: []common.SchemeEntry{{Kind: "live", SystemTag: "X"}},
			want:    "name is required",
		},
		{
			name: "duplicate name",
			entries: []common.SchemeEntry{
				{Name: "A", Kind: "live", SystemTag: "X"},
				{Name: "A", Kind: "live", SystemTag: "Y"},
			},
			want: "duplicate name",
		},
		{
			name:    "live without tag",
			entries: []common.SchemeEntry{{Name: "A", Kind: "live"}},
			want:    "requires system_tag",
		},
		{
			name:    "bad start date",
			entries: []common.SchemeEntry{{Name: "A", Kind: "live", SystemTag: "X", StartDate: "01/01/2024"}},
			want:    "invalid date",
		},
		{
			name:    "unknown frozen bundle",
			entries: []common.SchemeEntry{{Name: "Scheme OLD", Kind: "frozen"}},
			want:    "no archived bundle",
		},
		{
			name:    "unknown kind",
			entries: []common.SchemeEntry{{Name: "A", Kind: "hybrid"}},
			want:    "unknown kind",
		},
		{
			name:    "composite without components",
			entries: []common.SchemeEntry{{Name: "T", Kind: "composite"}},
			want:    "requires components",
		},
		{
			name: "composite with unknown component",
			entries: []common.SchemeEntry{
				{Name: "T", Kind: "composite", Components: []string{"Nope"}},
			},
			want: "unknown or composite component",
		},
		{
			name: "nested composite",
			entries: []common.SchemeEntry{
				{Name: "A", Kind: "live", SystemTag: "X"},
				{Name: "T1", Kind: "composite", Components: []string{"A"}},
				{Name: "T2", Kind: "composite", Components: []string{"T1", "A"}},
			},
			want: "unknown or composite component 'T1'",
		},
		{
			name:    "self reference",
			entries: []common.SchemeEntry{{Name: "T", Kind: "composite", Components: []string{"T"}}},
			want:    "cannot contain itself",
		},
		{
			name: "composite start date",
			entries: []common.SchemeEntry{
				{Name: "A", Kind: "live", SystemTag: "X"},
				{Name: "T", Kind: "composite", Components: []string{"A"}, StartDate: "2024-01-01"},
			},
			want: "start_date applies",
		},
		{
			name:     "account with unknown scheme",
			entries:  []common.SchemeEntry{{Name: "A", Kind: "live", SystemTag: "X"}},
			accounts: []common.AccountConfig{{ID: "ACC", Schemes: []string{"B"}}},
			want:     "unknown scheme 'B'",
		},
		{
			name:     "account without id",
			entries:  []common.SchemeEntry{{Name: "A", Kind: "live", SystemTag: "X"}},
			accounts: []common.AccountConfig{{Schemes: []string{"A"}}},
			want:     "id is required",
		},
		{
			name:    "duplicate account",
			entries: []common.SchemeEntry{{Name: "A", Kind: "live", SystemTag: "X"}},
			accounts: []common.AccountConfig{
				{ID: "ACC", Schemes: []string{"A"}},
				{ID: "ACC", Schemes: []string{"A"}},
			},
			want: "duplicate id",
		},
		{
			name:     "scheme listed twice",
			entries:  []common.SchemeEntry{{Name: "A", Kind: "live", SystemTag: "X"}},
			accounts: []common.AccountConfig{{ID: "ACC", Schemes: []string{"A", "A"}}},
			want:     "listed twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries, tt.accounts, arc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Schemes = defaultEntries()
	cfg.Accounts = defaultAccounts()

	r, err := NewFromConfig(cfg, loadArchive(t))
	require.NoError(t, err)
	schemes, err := r.SchemesFor(context.Background(), "ACC-002")
	require.NoError(t, err)
	require.Len(t, schemes, 1)
}

func TestNew_SchemesForReturnsCopy(t *testing.T) {
	r, err := New(defaultEntries(), defaultAccounts(), loadArchive(t))
	require.NoError(t, err)

	first, _ := r.SchemesFor(context.Background(), "ACC-001")
	first[0].DisplayName = "mutated"

	second, _ := r.SchemesFor(context.Background(), "ACC-001")
	assert.Equal(t, "Total Portfolio", second[0].DisplayName)
}

func TestNew_TrimsReferencedNames(t *testing.T) {
	entries := []common.SchemeEntry{
		{Name: "Total Portfolio", Kind: "composite", Components: []string{" Scheme QTF", "Scheme QAW "}, Active: true},
		{Name: " Scheme QAW", Kind: "live", SystemTag: "ZEN_QAW", Active: true},
		{Name: "Scheme QTF", Kind: "frozen"},
	}
	accounts := []common.AccountConfig{
		{ID: "ACC-001", Schemes: []string{"Total Portfolio ", " Scheme QAW", "Scheme QTF"}},
	}

	r, err := New(entries, accounts, loadArchive(t))
	require.NoError(t, err)

	got, err := r.SchemesFor(context.Background(), "ACC-001")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Total Portfolio", got[0].DisplayName)
	assert.Equal(t, "Scheme QAW", got[1].DisplayName)
	assert.Equal(t, 1, got[1].AccountCount)

	composite, ok := got[0].Source.(models.CompositeSource)
	require.True(t, ok)
	require.Len(t, composite.Components, 2)
	assert.Equal(t, "Scheme QTF", composite.Components[0].Name)
	assert.Equal(t, "Scheme QAW", composite.Components[1].Name)
}

func TestNew_DuplicateAfterTrimRejected(t *testing.T) {
	accounts := []common.AccountConfig{
		{ID: "ACC-001", Schemes: []string{"Scheme QAW", " Scheme QAW"}},
	}
	_, err := New(defaultEntries(), accounts, loadArchive(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listed twice")
}
