// Package archive holds the analytics of closed schemes, embedded at build time.
package archive

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bobmcallan/navdash/internal/models"
)

//go:embed data/*.json
var bundleFS embed.FS

// Archive is an immutable set of frozen scheme bundles keyed by display name.
// It is safe for concurrent use.
type Archive struct {
	bundles map[string]*models.FrozenBundle
	names   []string
}

// Load decodes the bundles compiled into the binary.
func Load() (*Archive, error) {
	return LoadFS(bundleFS, "data")
}

// LoadFS decodes every *.json file in dir of fsys as a FrozenBundle.
func LoadFS(fsys fs.FS, dir string) (*Archive, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	a := &Archive{bundles: make(map[string]*models.FrozenBundle)}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}

		var b models.FrozenBundle
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", p, err)
		}
		if b.Name == "" {
			return nil, fmt.Errorf("%s: bundle has no name", p)
		}
		if _, dup := a.bundles[b.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate bundle '%s'", p, b.Name)
		}
		a.bundles[b.Name] = &b
		a.names = append(a.names, b.Name)
	}
	sort.Strings(a.names)
	return a, nil
}

// Lookup returns the bundle archived under name. The bundle is shared and
// must not be modified.
func (a *Archive) Lookup(name string) (*models.FrozenBundle, bool) {
	if a == nil {
		return nil, false
	}
	b, ok := a.bundles[name]
	return b, ok
}

// Names lists archived scheme names in sorted order.
func (a *Archive) Names() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.names...)
}

// Expand rebuilds a synthetic series from a bundle's equity curve so a frozen
// scheme can join a composite chain. Drawdowns and cash flows are matched by
// date; points dated before the inception date are marked as baseline.
// PnL is not recoverable per point and is left at zero.
func Expand(b *models.FrozenBundle) (models.Series, error) {
	if b == nil || len(b.Data.EquityCurve) == 0 {
		return nil, nil
	}

	drawdowns := make(map[string]float64, len(b.Data.DrawdownCurve))
	for _, p := range b.Data.DrawdownCurve {
		drawdowns[p.Date] = p.Value
	}
	flows := make(map[string]models.CashFlow, len(b.Data.CashFlows))
	for _, cf := range b.Data.CashFlows {
		agg := flows[cf.Date]
		agg.Amount += cf.Amount
		agg.Dividend += cf.Dividend
		flows[cf.Date] = agg
	}

	inception := b.Metadata.InceptionDate
	series := make(models.Series, 0, len(b.Data.EquityCurve))
	for _, p := range b.Data.EquityCurve {
		d, err := models.ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("bundle '%s': %w", b.Name, err)
		}
		cf := flows[p.Date]
		series = append(series, models.DailyRecord{
			SystemTag:    b.Metadata.SchemeID,
			Date:         d,
			NAV:          p.NAV,
			Drawdown:     drawdowns[p.Date],
			CapitalInOut: float64(cf.Amount),
			Dividend:     float64(cf.Dividend),
			Baseline:     inception != "" && p.Date < inception,
		})
	}
	if n := len(series); n > 0 {
		series[n-1].PortfolioValue = float64(b.Data.CurrentExposure)
	}
	return series, nil
}
