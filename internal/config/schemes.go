package config

// schemes.go loads named cashback schemes from a YAML file:
//
//	default: padrao
//	schemes:
//	  - name: padrao
//	    label: "Padrão 10%"
//	    rate: 0.10
//	  - name: pacote
//	    label: "Pacote de sessões"
//	    rate: 0.15
//	    unit_price: 80
//	    sort: total_spent
//	    template: "Olá {nome}, você já tem {unidades} sessões de crédito!"
//
// Without a file, the environment defaults form a single scheme.

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
)

// DefaultSchemeName names the scheme built from environment defaults.
const DefaultSchemeName = "padrao"

// ErrUnknownScheme is returned when a scheme name is not configured.
var ErrUnknownScheme = errors.New("unknown scheme")

// Scheme is one named set of reconciliation settings.
type Scheme struct {
	Name     string
	Label    string
	Options  core.Options
	Template string
}

// SchemeSet is the configured schemes in file order.
type SchemeSet struct {
	Default string
	schemes []Scheme
}

type schemeFile struct {
	Default string       `yaml:"default"`
	Schemes []schemeYAML `yaml:"schemes"`
}

type schemeYAML struct {
	Name      string `yaml:"name"`
	Label     string `yaml:"label"`
	Rate      string `yaml:"rate"`
	UnitPrice string `yaml:"unit_price"`
	Sort      string `yaml:"sort"`
	Dir       string `yaml:"dir"`
	Template  string `yaml:"template"`
}

// LoadSchemes builds the scheme set for cfg: the file named by
// CASHBACK_SCHEMES_FILE when set, otherwise one scheme from the defaults.
func LoadSchemes(cfg CashbackConfig) (*SchemeSet, error) {
	if cfg.SchemesFile == "" {
		return DefaultSchemes(cfg), nil
	}
	data, err := os.ReadFile(cfg.SchemesFile)
	if err != nil {
		return nil, fmt.Errorf("read schemes file: %w", err)
	}
	set, err := ParseSchemes(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("schemes file %s: %w", cfg.SchemesFile, err)
	}
	return set, nil
}

// DefaultSchemes returns a set holding only the scheme described by cfg.
func DefaultSchemes(cfg CashbackConfig) *SchemeSet {
	return &SchemeSet{
		Default: DefaultSchemeName,
		schemes: []Scheme{{
			Name:     DefaultSchemeName,
			Label:    "Padrão " + cfg.Rate.Mul(decimal.NewFromInt(100)).String() + "%",
			Options:  cfg.Options(),
			Template: cfg.MessageTemplate,
		}},
	}
}

// ParseSchemes decodes a YAML scheme file. Fields a scheme leaves out fall
// back to cfg. Unknown keys are rejected.
func ParseSchemes(data []byte, cfg CashbackConfig) (*SchemeSet, error) {
	var f schemeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(f.Schemes) == 0 {
		return nil, errors.New("no schemes defined")
	}

	base := Scheme{Options: cfg.Options(), Template: cfg.MessageTemplate}
	set := &SchemeSet{Default: f.Default}
	seen := make(map[string]bool, len(f.Schemes))
	var errs []string

	for i, raw := range f.Schemes {
		s, err := raw.resolve(base)
		if err != nil {
			errs = append(errs, fmt.Sprintf("scheme %d (%q): %v", i+1, raw.Name, err))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("scheme %q defined twice", s.Name))
			continue
		}
		seen[s.Name] = true
		set.schemes = append(set.schemes, s)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid schemes:\n  - %s", strings.Join(errs, "\n  - "))
	}
	if set.Default == "" {
		set.Default = set.schemes[0].Name
	}
	if !seen[set.Default] {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownScheme, set.Default)
	}
	return set, nil
}

// Overrides are per-run adjustments to a scheme. Empty fields keep the
// scheme's value.
type Overrides struct {
	Rate      string
	UnitPrice string
	Sort      string
	Dir       string
}

// Apply returns s with o applied, validated the same way as a scheme file.
func (s Scheme) Apply(o Overrides) (Scheme, error) {
	y := schemeYAML{
		Name:      s.Name,
		Label:     s.Label,
		Rate:      strings.TrimSpace(o.Rate),
		UnitPrice: strings.TrimSpace(o.UnitPrice),
		Sort:      strings.TrimSpace(o.Sort),
		Dir:       strings.TrimSpace(o.Dir),
	}
	return y.resolve(s)
}

// resolve layers y over base.
func (y schemeYAML) resolve(base Scheme) (Scheme, error) {
	name := strings.TrimSpace(y.Name)
	if name == "" {
		return Scheme{}, errors.New("name is required")
	}

	opts := base.Options
	if y.Rate != "" {
		rate, err := parseDecimal(y.Rate)
		if err != nil {
			return Scheme{}, fmt.Errorf("invalid rate %q", y.Rate)
		}
		if err := ValidateRate(rate); err != nil {
			return Scheme{}, err
		}
		opts.Rate = rate
	}
	if y.UnitPrice != "" {
		price, err := parseDecimal(y.UnitPrice)
		if err != nil || price.IsNegative() {
			return Scheme{}, fmt.Errorf("invalid unit price %q", y.UnitPrice)
		}
		opts.UnitPrice = price
	}
	if y.Sort != "" || y.Dir != "" {
		column := y.Sort
		if column == "" {
			column = opts.Sort.Column
		}
		spec, err := core.ParseSort(column, y.Dir)
		if err != nil {
			return Scheme{}, err
		}
		opts.Sort = spec
	}

	label := y.Label
	if label == "" {
		label = name
	}
	tmpl := y.Template
	if tmpl == "" {
		tmpl = base.Template
	}
	return Scheme{Name: name, Label: label, Options: opts, Template: tmpl}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
}

// Get returns the scheme called name; an empty name selects the default.
func (s *SchemeSet) Get(name string) (Scheme, error) {
	if name == "" {
		name = s.Default
	}
	for _, sc := range s.schemes {
		if sc.Name == name {
			return sc, nil
		}
	}
	return Scheme{}, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

// All returns the schemes in file order.
func (s *SchemeSet) All() []Scheme {
	out := make([]Scheme, len(s.schemes))
	copy(out, s.schemes)
	return out
}
