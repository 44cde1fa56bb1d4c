package models

import "time"

// SchemeKind names the provenance of a scheme's data.
type SchemeKind string

const (
	SchemeKindLive      SchemeKind = "live"
	SchemeKindFrozen    SchemeKind = "frozen"
	SchemeKindComposite SchemeKind = "composite"
)

// Source is the resolved data source of a scheme. It is one of
// LiveSource, FrozenSource or CompositeSource.
type Source interface {
	Kind() SchemeKind
	isSource()
}

// LiveSource reads a scheme's records from the record store.
type LiveSource struct {
	SystemTag string
	StartDate time.Time // zero means no cutoff
}

func (LiveSource) Kind() SchemeKind { return SchemeKindLive }
func (LiveSource) isSource()        {}

// FrozenSource serves a closed scheme's archived analytics.
type FrozenSource struct {
	Bundle *FrozenBundle
}

func (FrozenSource) Kind() SchemeKind { return SchemeKindFrozen }
func (FrozenSource) isSource()        {}

// Component is one link of a composite chain.
type Component struct {
	Name   string
	Source Source // LiveSource or FrozenSource
}

// CompositeSource stitches components, oldest first, into one continuous index.
type CompositeSource struct {
	Components []Component
}

func (CompositeSource) Kind() SchemeKind { return SchemeKindComposite }
func (CompositeSource) isSource()        {}

// SchemeConfig is the static registry entry for a scheme.
type SchemeConfig struct {
	DisplayName string `json:"displayName"`
	SystemTag   string `json:"systemTag,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Scheme is a registry entry with its source resolved.
type Scheme struct {
	SchemeConfig
	Source       Source
	AccountCount int
}

// Kind returns the scheme's source kind.
func (s Scheme) Kind() SchemeKind {
	if s.Source == nil {
		return ""
	}
	return s.Source.Kind()
}

// SchemeSummary is the listing view of a registry entry.
type SchemeSummary struct {
	Name         string     `json:"name"`
	Kind         SchemeKind `json:"kind"`
	SystemTag    string     `json:"systemTag,omitempty"`
	IsActive     bool       `json:"isActive"`
	AccountCount int        `json:"accountCount"`
	Components   []string   `json:"components,omitempty"`
}

// Summary returns the listing view of s.
func (s Scheme) Summary() SchemeSummary {
	sum := SchemeSummary{
		Name:         s.DisplayName,
		Kind:         s.Kind(),
		SystemTag:    s.SystemTag,
		IsActive:     s.IsActive,
		AccountCount: s.AccountCount,
	}
	if cs, ok := s.Source.(CompositeSource); ok {
		for _, c := range cs.Components {
			sum.Components = append(sum.Components, c.Name)
		}
	}
	return sum
}
