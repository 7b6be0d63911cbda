// ABOUTME: Tests for field parameters and the debug query override.
// ABOUTME: Validates required-key enforcement and override precedence.

package config

import "testing"

func TestParseParams(t *testing.T) {
	p := ParseParams(map[string]string{
		"sourceFileApiKey":  "source_file",
		"columnsMetaApiKey": "columns_meta",
		"rowCountApiKey":    "row_count",
		"strictLocale":      "true",
		"unrelated":         "ignored",
	})

	if p.SourceFileAPIKey != "source_file" {
		t.Errorf("SourceFileAPIKey = %q", p.SourceFileAPIKey)
	}
	if p.ColumnsMetaAPIKey != "columns_meta" || p.RowCountAPIKey != "row_count" {
		t.Errorf("optional keys = %q, %q", p.ColumnsMetaAPIKey, p.RowCountAPIKey)
	}
	if !p.StrictLocale {
		t.Error("StrictLocale = false, want true")
	}
}

func TestParamsValidate(t *testing.T) {
	if err := (Params{}).Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing sourceFileApiKey")
	}
	if err := (Params{SourceFileAPIKey: "f"}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestApplyQueryOverride(t *testing.T) {
	p := Params{SourceFileAPIKey: "configured"}

	got := p.ApplyQueryOverride("sourceFileApiKey=debug_key&other=1")
	if got.SourceFileAPIKey != "debug_key" {
		t.Errorf("override = %q, want debug_key", got.SourceFileAPIKey)
	}

	got = p.ApplyQueryOverride("other=1")
	if got.SourceFileAPIKey != "configured" {
		t.Errorf("no-override = %q, want configured", got.SourceFileAPIKey)
	}

	got = p.ApplyQueryOverride("%%%bad")
	if got.SourceFileAPIKey != "configured" {
		t.Errorf("bad query = %q, want configured", got.SourceFileAPIKey)
	}
}
