package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_PIN", "3040")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("Server = %s, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.Upload.MaxFileSize != 20*1024*1024 {
		t.Errorf("Upload.MaxFileSize = %d", cfg.Upload.MaxFileSize)
	}
	if cfg.Upload.MaxConcurrent != 4 {
		t.Errorf("Upload.MaxConcurrent = %d, want 4", cfg.Upload.MaxConcurrent)
	}
	if !cfg.Cashback.Rate.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("Cashback.Rate = %s, want 0.1", cfg.Cashback.Rate)
	}
	if !cfg.Cashback.UnitPrice.IsZero() {
		t.Errorf("Cashback.UnitPrice = %s, want 0", cfg.Cashback.UnitPrice)
	}
	if cfg.Session.IdleTimeout != 2*time.Hour {
		t.Errorf("Session.IdleTimeout = %v", cfg.Session.IdleTimeout)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_CONCURRENT", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CASHBACK_RATE", "0,05")
	t.Setenv("CASHBACK_UNIT_PRICE", "80")
	t.Setenv("SESSION_IDLE_TIMEOUT", "1h30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want 10", cfg.Upload.MaxConcurrent)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if !cfg.Cashback.Rate.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("Cashback.Rate = %s, want 0.05", cfg.Cashback.Rate)
	}
	if cfg.Session.IdleTimeout != 90*time.Minute {
		t.Errorf("Session.IdleTimeout = %v", cfg.Session.IdleTimeout)
	}

	opts := cfg.Cashback.Options()
	if !opts.UnitPrice.Equal(decimal.NewFromInt(80)) || opts.Sort != core.DefaultSort {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
}

func TestLoad_MissingPIN(t *testing.T) {
	t.Setenv("ACCESS_PIN", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "ACCESS_PIN") {
		t.Fatalf("Load() error = %v, want missing ACCESS_PIN", err)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , ,192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if strings.Join(cfg.Security.TrustedProxies, "|") != strings.Join(want, "|") {
		t.Errorf("TrustedProxies = %q, want %q", cfg.Security.TrustedProxies, want)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad integer", "SERVER_PORT", "eighty"},
		{"bad duration", "SERVER_READ_TIMEOUT", "soon"},
		{"bad decimal", "CASHBACK_RATE", "ten percent"},
		{"bad boolean", "SESSION_SECURE_COOKIE", "maybe"},
		{"rate above one", "CASHBACK_RATE", "1.5"},
		{"negative unit price", "CASHBACK_UNIT_PRICE", "-1"},
		{"unknown sort", "CASHBACK_SORT", "cpf"},
		{"short pin", "ACCESS_PIN", "12"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() on zero config should fail")
	}
	for _, want := range []string{"SERVER_PORT", "UPLOAD_MAX_FILE_SIZE", "ACCESS_PIN", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %s:\n%v", want, err)
		}
	}
}

func TestConfig_StringMasksPIN(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s := cfg.String()
	if strings.Contains(s, "3040") {
		t.Errorf("String() leaks the PIN: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s", s)
	}
}

func TestLoadSchemes_DefaultsWithoutFile(t *testing.T) {
	cfg := CashbackConfig{Rate: decimal.RequireFromString("0.10"), Sort: "cashback"}

	set, err := LoadSchemes(cfg)
	if err != nil {
		t.Fatalf("LoadSchemes() error = %v", err)
	}
	s, err := set.Get("")
	if err != nil {
		t.Fatalf("Get default: %v", err)
	}
	if s.Name != DefaultSchemeName || s.Label != "Padrão 10%" || !s.Options.Rate.Equal(cfg.Rate) {
		t.Errorf("default scheme = %+v", s)
	}
}

func TestLoadSchemes_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.yaml")
	content := `default: pacote
schemes:
  - name: padrao
    rate: 0.10
  - name: pacote
    label: Pacote de sessões
    rate: "0,15"
    unit_price: 80
    sort: name
    template: "{nome}: {unidades} sessões"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := CashbackConfig{Rate: decimal.RequireFromString("0.10"), Sort: "cashback", MessageTemplate: "base", SchemesFile: path}
	set, err := LoadSchemes(cfg)
	if err != nil {
		t.Fatalf("LoadSchemes() error = %v", err)
	}

	if got := len(set.All()); got != 2 {
		t.Fatalf("All() = %d schemes, want 2", got)
	}

	def, _ := set.Get("")
	if def.Name != "pacote" {
		t.Errorf("default = %q, want pacote", def.Name)
	}
	if !def.Options.Rate.Equal(decimal.RequireFromString("0.15")) || !def.Options.UnitPrice.Equal(decimal.NewFromInt(80)) {
		t.Errorf("pacote options = %+v", def.Options)
	}
	if def.Options.Sort != (core.SortSpec{Column: core.SortByName, Dir: "asc"}) {
		t.Errorf("pacote sort = %+v", def.Options.Sort)
	}

	padrao, err := set.Get("padrao")
	if err != nil {
		t.Fatalf("Get(padrao): %v", err)
	}
	if padrao.Label != "padrao" || padrao.Template != "base" {
		t.Errorf("padrao should inherit defaults: %+v", padrao)
	}

	if _, err := set.Get("vip"); err == nil {
		t.Error("Get(vip) should fail")
	}
}

func TestParseSchemes_Invalid(t *testing.T) {
	cfg := CashbackConfig{Rate: decimal.RequireFromString("0.10"), Sort: "cashback"}

	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "schemes: []\n"},
		{"missing name", "schemes:\n  - rate: 0.1\n"},
		{"bad rate", "schemes:\n  - name: a\n    rate: dez\n"},
		{"rate above one", "schemes:\n  - name: a\n    rate: 2\n"},
		{"negative unit price", "schemes:\n  - name: a\n    unit_price: -5\n"},
		{"bad sort", "schemes:\n  - name: a\n    sort: cpf\n"},
		{"duplicate", "schemes:\n  - name: a\n  - name: a\n"},
		{"unknown default", "default: b\nschemes:\n  - name: a\n"},
		{"unknown key", "schemes:\n  - name: a\n    percent: 10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSchemes([]byte(tt.yaml), cfg); err == nil {
				t.Error("ParseSchemes() should fail")
			}
		})
	}
}

func TestScheme_Apply(t *testing.T) {
	cfg := CashbackConfig{Rate: decimal.RequireFromString("0.10"), Sort: "cashback", MessageTemplate: "oi {nome}"}
	base, err := DefaultSchemes(cfg).Get("")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	got, err := base.Apply(Overrides{})
	if err != nil {
		t.Fatalf("Apply(empty) error = %v", err)
	}
	if !got.Options.Rate.Equal(base.Options.Rate) || got.Template != "oi {nome}" || got.Name != base.Name {
		t.Errorf("Apply(empty) = %+v, want unchanged", got)
	}

	got, err = base.Apply(Overrides{Rate: "0,05", UnitPrice: "80", Sort: "name"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !got.Options.Rate.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("Rate = %s, want 0.05", got.Options.Rate)
	}
	if !got.Options.UnitPrice.Equal(decimal.NewFromInt(80)) {
		t.Errorf("UnitPrice = %s, want 80", got.Options.UnitPrice)
	}
	if got.Options.Sort != (core.SortSpec{Column: core.SortByName, Dir: "asc"}) {
		t.Errorf("Sort = %+v", got.Options.Sort)
	}

	tests := []struct {
		name string
		o    Overrides
		want string
	}{
		{"rate above one", Overrides{Rate: "1.5"}, "invalid rate"},
		{"rate not a number", Overrides{Rate: "dez"}, "invalid rate"},
		{"negative unit price", Overrides{UnitPrice: "-1"}, "invalid unit price"},
		{"bad sort", Overrides{Sort: "phone"}, "invalid sort"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := base.Apply(tt.o)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Apply(%+v) error = %v, want %q", tt.o, err, tt.want)
			}
		})
	}
}

func TestLoadCashback(t *testing.T) {
	t.Setenv("ACCESS_PIN", "")
	t.Setenv("CASHBACK_RATE", "0,15")
	t.Setenv("CASHBACK_SORT", "name")

	c, err := LoadCashback()
	if err != nil {
		t.Fatalf("LoadCashback() error = %v", err)
	}
	if !c.Rate.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("Rate = %s, want 0.15", c.Rate)
	}
	if got := c.Options().Sort; got != (core.SortSpec{Column: core.SortByName, Dir: "asc"}) {
		t.Errorf("Sort = %+v", got)
	}

	t.Setenv("CASHBACK_RATE", "2")
	if _, err := LoadCashback(); err == nil || !strings.Contains(err.Error(), "CASHBACK_RATE") {
		t.Errorf("LoadCashback() with rate 2: error = %v", err)
	}
}

func TestCheckPIN(t *testing.T) {
	tests := []struct {
		given, expected string
		want            error
	}{
		{"", "3040", ErrMissingPIN},
		{"   ", "3040", ErrMissingPIN},
		{"3040", "3040", nil},
		{" 3040 ", "3040", nil},
		{"304", "3040", ErrInvalidPIN},
		{"30400", "3040", ErrInvalidPIN},
		{"3040", "", ErrInvalidPIN},
	}
	for _, tt := range tests {
		if err := CheckPIN(tt.given, tt.expected); !errors.Is(err, tt.want) {
			t.Errorf("CheckPIN(%q, %q) = %v, want %v", tt.given, tt.expected, err, tt.want)
		}
	}
}
