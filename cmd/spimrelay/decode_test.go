package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mschirtzinger/spimrelay/internal/naming"
	"github.com/mschirtzinger/spimrelay/internal/ui"
)

func TestRunDecode_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := runDecode(&buf, []string{ingestName}, "auto", naming.ModePlane, "json"); err != nil {
		t.Fatalf("runDecode() error = %v", err)
	}

	var rows []decoded
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Canonical != canonicalName {
		t.Errorf("Canonical = %s, want %s", rows[0].Canonical, canonicalName)
	}
	if rows[0].Record == nil || rows[0].Record.Plane != 4 || rows[0].Record.Channel != 1 {
		t.Errorf("Record = %+v", rows[0].Record)
	}
}

func TestRunDecode_Grammars(t *testing.T) {
	tests := []struct {
		name    string
		grammar string
		input   string
		wantErr bool
	}{
		{"auto ingest", "auto", ingestName, false},
		{"auto canonical", "auto", canonicalName, false},
		{"canonical", "canonical", canonicalName, false},
		{"canonical rejects ingest", "canonical", ingestName, true},
		{"ingest rejects canonical", "ingest", canonicalName, true},
		{"malformed", "auto", "randomfile.tif", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runDecode(&buf, []string{tt.input}, tt.grammar, naming.ModePlane, "json")
			if (err != nil) != tt.wantErr {
				t.Fatalf("runDecode() error = %v, wantErr %v", err, tt.wantErr)
			}

			var rows []decoded
			if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
				t.Fatalf("invalid JSON output: %v", err)
			}
			if tt.wantErr && rows[0].Error == "" {
				t.Error("failed row should carry an error")
			}
			if !tt.wantErr && rows[0].Canonical != canonicalName {
				t.Errorf("Canonical = %s", rows[0].Canonical)
			}
		})
	}
}

func TestRunDecode_StackYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := runDecode(&buf, []string{"data/" + ingestName}, "ingest", naming.ModeStack, "yaml"); err != nil {
		t.Fatalf("runDecode() error = %v", err)
	}

	var rows []decoded
	if err := yaml.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("invalid YAML output: %v\n%s", err, buf.String())
	}
	want := "timelapseID-20240808-111112_SPC-0002_TP-0003_ILL-0_CAM-0_CH-01_PL-(ZS)-outOf-0001.tif"
	if rows[0].Canonical != want {
		t.Errorf("Canonical = %s, want %s", rows[0].Canonical, want)
	}
	if rows[0].Record.Directory != "data" {
		t.Errorf("Directory = %q, want data", rows[0].Record.Directory)
	}
}

func TestRunDecode_TOML(t *testing.T) {
	var buf bytes.Buffer
	if err := runDecode(&buf, []string{ingestName, canonicalName}, "auto", naming.ModePlane, "toml"); err != nil {
		t.Fatalf("runDecode() error = %v", err)
	}

	var out struct {
		Names []decoded `toml:"name"`
	}
	if _, err := toml.Decode(buf.String(), &out); err != nil {
		t.Fatalf("invalid TOML output: %v\n%s", err, buf.String())
	}
	if len(out.Names) != 2 {
		t.Fatalf("got %d rows, want 2", len(out.Names))
	}
	for _, row := range out.Names {
		if row.Canonical != canonicalName {
			t.Errorf("%s: Canonical = %s", row.Input, row.Canonical)
		}
	}
}

func TestRunDecode_Text(t *testing.T) {
	ui.SetColor(false)

	var buf bytes.Buffer
	err := runDecode(&buf, []string{ingestName, "randomfile.tif"}, "auto", naming.ModePlane, "text")
	if err == nil {
		t.Error("runDecode() should report the undecodable name")
	}

	out := buf.String()
	for _, want := range []string{ui.IconPass + " " + ingestName, canonicalName, ui.IconFail + " randomfile.tif", "not an image plane file"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDecode_BadOptions(t *testing.T) {
	var buf bytes.Buffer
	if err := runDecode(&buf, []string{ingestName}, "legacy", naming.ModePlane, "text"); err == nil {
		t.Error("unknown grammar should fail")
	}
	if err := runDecode(&buf, []string{ingestName}, "auto", naming.ModePlane, "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}
