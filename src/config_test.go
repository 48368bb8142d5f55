package pscal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(`
debug = true
log_categories = ["pointer", "memory"]
type_warnings = false
max_fixed_string_length = 80
default_pointee = "real"
sweep_nested_pointers = true
color = "never"
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if !cfg.Debug || cfg.TypeWarnings || cfg.MaxFixedStringLength != 80 ||
		cfg.DefaultPointee != "real" || !cfg.SweepNestedPointers || cfg.Color != "never" {
		t.Errorf("decoded config = %+v", cfg)
	}
	if len(cfg.LogCategories) != 2 {
		t.Errorf("log categories = %v", cfg.LogCategories)
	}
}

func TestParseConfigDefaultsAndValidation(t *testing.T) {
	cfg, err := ParseConfig("")
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.MaxFixedStringLength != def.MaxFixedStringLength || cfg.DefaultPointee != "integer" || !cfg.TypeWarnings {
		t.Errorf("empty document should keep defaults, got %+v", cfg)
	}

	for _, bad := range []string{
		`color = "sometimes"`,
		`max_fixed_string_length = 0`,
		`debug = "yes"`,
	} {
		if _, err := ParseConfig(bad); err == nil {
			t.Errorf("ParseConfig(%q) should fail", bad)
		}
	}
}

func TestLoadConfigReportsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pscal.toml")
	if err := os.WriteFile(path, []byte("debug = true\nbogus = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, unknown, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not loaded")
	}
	if len(unknown) != 1 || unknown[0] != "bogus" {
		t.Errorf("unknown keys = %v", unknown)
	}

	if _, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoggerLevelsAndCategories(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLoggerWithWriters(true, &out, &errOut)

	logger.DebugCat(CatPointer, "hidden")
	if out.Len() != 0 {
		t.Error("debug output for a disabled category")
	}
	logger.EnableCategory(CatPointer)
	logger.DebugCat(CatPointer, "shown %d", 1)
	if !strings.Contains(out.String(), "[DEBUG:pointer] shown 1") {
		t.Errorf("debug output = %q", out.String())
	}

	logger.WarnAt(CatArray, &SourcePosition{Line: 3, Column: 7}, "bad bound")
	if !strings.Contains(errOut.String(), "[PScal:array WARN] bad bound") ||
		!strings.Contains(errOut.String(), "at line 3, column 7 in <unknown>") {
		t.Errorf("warning output = %q", errOut.String())
	}

	logger.SetEnabled(false)
	out.Reset()
	logger.DebugCat(CatPointer, "quiet")
	if out.Len() != 0 {
		t.Error("debug output while disabled")
	}

	var nilLogger *Logger
	nilLogger.Warn("no panic")
}

func TestConfiguredLoggerCategories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.LogCategories = []string{"ALL"}
	logger := cfg.newConfiguredLogger()
	for _, cat := range AllCategories {
		if !logger.IsCategoryEnabled(cat) {
			t.Errorf("category %s not enabled", cat)
		}
	}
}
