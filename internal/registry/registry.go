// Package registry resolves configured schemes and account views.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/navdash/internal/archive"
	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

// Registry is the static scheme registry. It is built once at startup and
// never mutated, so it is safe for concurrent use.
type Registry struct {
	schemes  map[string]models.Scheme
	order    []string
	accounts map[string][]string
}

var _ interfaces.SchemeRegistry = (*Registry)(nil)

// New validates the configured schemes and accounts and resolves every
// scheme's source. Frozen schemes are looked up in arc.
func New(entries []common.SchemeEntry, accounts []common.AccountConfig, arc *archive.Archive) (*Registry, error) {
	r := &Registry{
		schemes:  make(map[string]models.Scheme, len(entries)),
		accounts: make(map[string][]string, len(accounts)),
	}

	byName := make(map[string]common.SchemeEntry, len(entries))
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("scheme #%d: name is required", i+1)
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("scheme '%s': duplicate name", name)
		}
		e.Name = name
		byName[name] = e
		r.order = append(r.order, name)
	}

	// Leaf sources first so composites can reference schemes declared later.
	for _, name := range r.order {
		e := byName[name]
		kind := models.SchemeKind(strings.ToLower(strings.TrimSpace(e.Kind)))
		if kind == models.SchemeKindComposite {
			continue
		}
		sc, err := resolveLeaf(e, kind, arc)
		if err != nil {
			return nil, err
		}
		r.schemes[name] = sc
	}

	for _, name := range r.order {
		e := byName[name]
		if models.SchemeKind(strings.ToLower(strings.TrimSpace(e.Kind))) != models.SchemeKindComposite {
			continue
		}
		sc, err := r.resolveComposite(e)
		if err != nil {
			return nil, err
		}
		r.schemes[name] = sc
	}

	counts := make(map[string]int)
	for i, a := range accounts {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			return nil, fmt.Errorf("account #%d: id is required", i+1)
		}
		if _, dup := r.accounts[id]; dup {
			return nil, fmt.Errorf("account '%s': duplicate id", id)
		}
		seen := make(map[string]bool, len(a.Schemes))
		names := make([]string, 0, len(a.Schemes))
		for _, s := range a.Schemes {
			s = strings.TrimSpace(s)
			if _, ok := r.schemes[s]; !ok {
				return nil, fmt.Errorf("account '%s': unknown scheme '%s'", id, s)
			}
			if seen[s] {
				return nil, fmt.Errorf("account '%s': scheme '%s' listed twice", id, s)
			}
			seen[s] = true
			counts[s]++
			names = append(names, s)
		}
		r.accounts[id] = names
	}

	for name, sc := range r.schemes {
		sc.AccountCount = counts[name]
		r.schemes[name] = sc
	}
	return r, nil
}

// NewFromConfig builds the registry from a loaded Config.
func NewFromConfig(cfg *common.Config, arc *archive.Archive) (*Registry, error) {
	return New(cfg.Schemes, cfg.Accounts, arc)
}

func resolveLeaf(e common.SchemeEntry, kind models.SchemeKind, arc *archive.Archive) (models.Scheme, error) {
	sc := models.Scheme{
		SchemeConfig: models.SchemeConfig{
			DisplayName: e.Name,
			SystemTag:   strings.TrimSpace(e.SystemTag),
			IsActive:    e.Active,
		},
	}

	switch kind {
	case models.SchemeKindLive:
		if sc.SystemTag == "" {
			return sc, fmt.Errorf("scheme '%s': live scheme requires system_tag", e.Name)
		}
		start, err := parseStart(e)
		if err != nil {
			return sc, err
		}
		sc.Source = models.LiveSource{SystemTag: sc.SystemTag, StartDate: start}
	case models.SchemeKindFrozen:
		b, ok := arc.Lookup(e.Name)
		if !ok {
			return sc, fmt.Errorf("scheme '%s': no archived bundle", e.Name)
		}
		if sc.SystemTag == "" {
			sc.SystemTag = b.Metadata.SchemeID
		}
		sc.Source = models.FrozenSource{Bundle: b}
	default:
		return sc, fmt.Errorf("scheme '%s': unknown kind '%s' (supported: live, frozen, composite)", e.Name, e.Kind)
	}
	return sc, nil
}

func (r *Registry) resolveComposite(e common.SchemeEntry) (models.Scheme, error) {
	if len(e.Components) == 0 {
		return models.Scheme{}, fmt.Errorf("scheme '%s': composite requires components", e.Name)
	}
	if strings.TrimSpace(e.StartDate) != "" {
		return models.Scheme{}, fmt.Errorf("scheme '%s': start_date applies to live schemes and components only", e.Name)
	}

	src := models.CompositeSource{Components: make([]models.Component, 0, len(e.Components))}
	for _, c := range e.Components {
		c = strings.TrimSpace(c)
		leaf, ok := r.schemes[c]
		if !ok || leaf.Kind() == models.SchemeKindComposite {
			if c == e.Name {
				return models.Scheme{}, fmt.Errorf("scheme '%s': composite cannot contain itself", e.Name)
			}
			return models.Scheme{}, fmt.Errorf("scheme '%s': unknown or composite component '%s'", e.Name, c)
		}
		src.Components = append(src.Components, models.Component{Name: c, Source: leaf.Source})
	}

	return models.Scheme{
		SchemeConfig: models.SchemeConfig{
			DisplayName: e.Name,
			SystemTag:   strings.TrimSpace(e.SystemTag),
			IsActive:    e.Active,
		},
		Source: src,
	}, nil
}

func parseStart(e common.SchemeEntry) (time.Time, error) {
	s := strings.TrimSpace(e.StartDate)
	if s == "" {
		return time.Time{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("scheme '%s': %w", e.Name, err)
	}
	return d, nil
}

// SchemesFor returns the account's schemes in display order.
func (r *Registry) SchemesFor(_ context.Context, accountID string) ([]models.Scheme, error) {
	names, ok := r.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", interfaces.ErrUnknownAccount, accountID)
	}
	out := make([]models.Scheme, 0, len(names))
	for _, n := range names {
		out = append(out, r.schemes[n])
	}
	return out, nil
}

// Scheme returns a scheme by display name.
func (r *Registry) Scheme(_ context.Context, name string) (models.Scheme, error) {
	sc, ok := r.schemes[name]
	if !ok {
		return models.Scheme{}, fmt.Errorf("%w: '%s'", interfaces.ErrUnknownScheme, name)
	}
	return sc, nil
}

// Schemes returns every scheme in configuration order.
func (r *Registry) Schemes() []models.Scheme {
	out := make([]models.Scheme, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.schemes[n])
	}
	return out
}

// Accounts returns the configured account ids, sorted.
func (r *Registry) Accounts() []string {
	out := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
