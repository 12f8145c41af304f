package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/xmldiffmerge/pkg/xmldiff"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
	"github.com/spf13/cobra"
)

// fileConfig mirrors xmldiff.Config's options for loading from a TOML
// file via --config, the way the teacher's repo declares BurntSushi/toml
// as a dependency for its own settings files.
type fileConfig struct {
	IgnoreWhitespace   bool     `toml:"ignore_whitespace"`
	IgnoreNewlines     bool     `toml:"ignore_newlines"`
	TrimValues         bool     `toml:"trim_values"`
	IgnoreCase         bool     `toml:"ignore_case"`
	IgnoreValues       bool     `toml:"ignore_values"`
	KeyAttributes      []string `toml:"key_attributes"`
	ExcludedAttributes []string `toml:"excluded_attributes"`
	NamespaceMode      string   `toml:"namespace_mode"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fc, fmt.Errorf("load config %s: %w", path, err)
	}
	return fc, nil
}

// configFlags are the comparison options shared by the diff and merge
// subcommands.
type configFlags struct {
	configPath    string
	ignoreWS      bool
	ignoreNL      bool
	trimValues    bool
	ignoreCase    bool
	ignoreValues  bool
	keyAttrs      []string
	excludedAttrs []string
	namespaceMode string
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "TOML file with comparison settings")
	cmd.Flags().BoolVar(&f.ignoreWS, "ignore-whitespace", false, "collapse runs of whitespace before comparing text")
	cmd.Flags().BoolVar(&f.ignoreNL, "ignore-newlines", false, "strip newlines before comparing text")
	cmd.Flags().BoolVar(&f.trimValues, "trim-values", false, "trim leading/trailing whitespace before comparing text")
	cmd.Flags().BoolVar(&f.ignoreCase, "ignore-case", false, "compare text and attribute values case-insensitively")
	cmd.Flags().BoolVar(&f.ignoreValues, "ignore-values", false, "match elements by structure only, ignoring content")
	cmd.Flags().StringSliceVar(&f.keyAttrs, "key-attr", nil, "attribute name(s) that identify an element across revisions")
	cmd.Flags().StringSliceVar(&f.excludedAttrs, "exclude-attr", nil, "attribute name(s) to ignore entirely")
	cmd.Flags().StringVar(&f.namespaceMode, "namespace-mode", "", "strict|ignore-prefix|ignore-namespace (default ignore-prefix)")
}

// build resolves the --config file (if any) and command-line flags into
// an xmldiff.Config. Flags override the file; the file overrides
// NewConfig's defaults.
func (f *configFlags) build() (xmldiff.Config, error) {
	fc, err := loadFileConfig(f.configPath)
	if err != nil {
		return xmldiff.Config{}, err
	}

	nsMode := f.namespaceMode
	if nsMode == "" {
		nsMode = fc.NamespaceMode
	}
	mode, err := parseNamespaceMode(nsMode)
	if err != nil {
		return xmldiff.Config{}, err
	}

	opts := []xmldiff.Option{
		xmldiff.WithIgnoreWhitespace(f.ignoreWS || fc.IgnoreWhitespace),
		xmldiff.WithIgnoreNewlines(f.ignoreNL || fc.IgnoreNewlines),
		xmldiff.WithTrimValues(f.trimValues || fc.TrimValues),
		xmldiff.WithIgnoreCase(f.ignoreCase || fc.IgnoreCase),
		xmldiff.WithIgnoreValues(f.ignoreValues || fc.IgnoreValues),
		xmldiff.WithNamespaceMode(mode),
	}
	if keys := firstNonEmpty(f.keyAttrs, fc.KeyAttributes); len(keys) > 0 {
		opts = append(opts, xmldiff.WithKeyAttributeNames(keys...))
	}
	if excl := firstNonEmpty(f.excludedAttrs, fc.ExcludedAttributes); len(excl) > 0 {
		opts = append(opts, xmldiff.WithExcludedAttributeNames(excl...))
	}

	return xmldiff.NewConfig(opts...), nil
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

func parseNamespaceMode(s string) (xmlnode.NamespaceMode, error) {
	switch s {
	case "", "ignore-prefix":
		return xmlnode.IgnorePrefix, nil
	case "strict":
		return xmlnode.Strict, nil
	case "ignore-namespace":
		return xmlnode.IgnoreNamespace, nil
	}
	return 0, fmt.Errorf("unknown namespace-mode %q", s)
}

func parseFile(path string) (xmlnode.Element, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	el, err := xmlnode.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return el, nil
}
