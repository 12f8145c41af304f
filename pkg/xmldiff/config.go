package xmldiff

import (
	"github.com/odvcencio/xmldiffmerge/pkg/match"
	"github.com/odvcencio/xmldiffmerge/pkg/normalize"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// NodePreservationMode controls whether and how comments, CDATA
// sections, and processing instructions are diffed (spec §6).
type NodePreservationMode int

const (
	PreserveNone NodePreservationMode = iota
	PreserveAll
	PreserveCommentsOnly
	PreserveCDataOnly
	PreserveProcessingInstructionsOnly
)

// PreservationSettings configures non-element-node diffing when a
// preservation mode other than PreserveNone is active (spec §6).
type PreservationSettings struct {
	Mode                   NodePreservationMode
	TrackCommentPosition   bool
	NormalizeCDataWhitespace bool
	PreservePITargets      []string // nil means all targets
	CaseSensitivePITargets bool     // default true
}

// Config is the immutable comparison configuration (spec §3
// XmlDiffConfig). Build one with NewConfig and the With* options; a
// Config value, once built, may be shared across concurrent Diff calls.
type Config struct {
	ignoreWhitespace      bool
	ignoreNewlines        bool
	trimValues            bool
	ignoreCase            bool
	ignoreValues          bool
	ignoreAttributeOrder  bool
	keyAttributeNames     []string
	excludedAttributeNames map[string]bool
	namespaceMode         xmlnode.NamespaceMode
	valueNormalizers      []normalize.Normalizer
	preservation          PreservationSettings
	strategy              match.Strategy
}

// Option configures a Config via NewConfig.
type Option func(*Config)

// NewConfig builds an immutable Config from the given options. Absent
// options take the spec's defaults: no normalization flags set,
// ignore_attribute_order=true (required for correct semantics, spec
// §3), namespace mode IgnorePrefix, no preservation, default matching
// strategy.
func NewConfig(opts ...Option) Config {
	c := Config{
		ignoreAttributeOrder:   true,
		excludedAttributeNames: map[string]bool{},
		namespaceMode:          xmlnode.IgnorePrefix,
		preservation:           PreservationSettings{Mode: PreserveNone, CaseSensitivePITargets: true},
		strategy:               match.Default,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func WithIgnoreWhitespace(v bool) Option { return func(c *Config) { c.ignoreWhitespace = v } }
func WithIgnoreNewlines(v bool) Option   { return func(c *Config) { c.ignoreNewlines = v } }
func WithTrimValues(v bool) Option       { return func(c *Config) { c.trimValues = v } }
func WithIgnoreCase(v bool) Option       { return func(c *Config) { c.ignoreCase = v } }
func WithIgnoreValues(v bool) Option     { return func(c *Config) { c.ignoreValues = v } }

func WithKeyAttributeNames(names ...string) Option {
	return func(c *Config) { c.keyAttributeNames = append([]string(nil), names...) }
}

func WithExcludedAttributeNames(names ...string) Option {
	return func(c *Config) {
		if c.excludedAttributeNames == nil {
			c.excludedAttributeNames = map[string]bool{}
		}
		for _, n := range names {
			c.excludedAttributeNames[n] = true
		}
	}
}

func WithNamespaceMode(mode xmlnode.NamespaceMode) Option {
	return func(c *Config) { c.namespaceMode = mode }
}

func WithValueNormalizers(ns ...normalize.Normalizer) Option {
	return func(c *Config) { c.valueNormalizers = append([]normalize.Normalizer(nil), ns...) }
}

func WithPreservation(p PreservationSettings) Option {
	return func(c *Config) { c.preservation = p }
}

func WithStrategy(s match.Strategy) Option {
	return func(c *Config) { c.strategy = s }
}

// normConfig projects Config onto a normalize.Config for value
// comparisons.
func (c Config) normConfig() normalize.Config {
	return normalize.Config{
		TrimValues:       c.trimValues,
		IgnoreNewlines:   c.ignoreNewlines,
		IgnoreWhitespace: c.ignoreWhitespace,
		IgnoreCase:       c.ignoreCase,
		UserNormalizers:  c.valueNormalizers,
	}
}

// matchConfig projects Config onto a match.Config for the matching
// strategy.
func (c Config) matchConfig() match.Config {
	return match.Config{
		KeyAttributeNames:      c.keyAttributeNames,
		ExcludedAttributeNames: c.excludedAttributeNames,
		IgnoreValues:           c.ignoreValues,
		NamespaceMode:          c.namespaceMode,
		Normalize:              c.normConfig(),
	}
}

func (c Config) score(e1, e2 xmlnode.Element) float64 {
	strategy := c.strategy
	if strategy == nil {
		strategy = match.Default
	}
	return strategy(e1, e2, c.matchConfig())
}

// Score exposes the configured matching strategy to other packages (the
// merge engine reuses it to decide whether two independently-added
// elements are the same logical insertion or a genuine AddAdd conflict,
// spec §4.6).
func (c Config) Score(e1, e2 xmlnode.Element) float64 {
	return c.score(e1, e2)
}

// NormalizeConfig exposes the value-normalization settings to other
// packages (the merge engine compares ours/theirs text and attribute
// values under the same normalization policy used by the diff itself).
func (c Config) NormalizeConfig() normalize.Config {
	return c.normConfig()
}
