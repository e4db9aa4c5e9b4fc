package conditions

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	p := write(t, "config.json", `[
		{"name": "Transport Strikes", "sectors": ["Trasporto"], "regions": ["Lazio", "Lombardia"]},
		{"name": "Health", "sectors": ["Sanità"], "regions": ["Lazio"]}
	]`)
	conds, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(conds) != 2 || conds[0].Name != "Transport Strikes" || conds[1].Name != "Health" {
		t.Fatalf("unexpected conditions: %+v", conds)
	}
	if len(conds[0].Regions) != 2 || conds[0].Regions[1] != "Lombardia" {
		t.Fatalf("regions not decoded: %+v", conds[0])
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	p := write(t, "conditions.yaml", "- name: Scuola\n  sectors: [Scuola]\n  regions: [Puglia]\n")
	conds, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(conds) != 1 || conds[0].Sectors[0] != "Scuola" {
		t.Fatalf("unexpected conditions: %+v", conds)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load(write(t, "c.json", `[{"sectors":["a"],"regions":["b"]}]`)); err == nil {
		t.Fatal("expected error for unnamed condition")
	}
	if _, err := Load(write(t, "c.json", `[{"name":"x","sector":["a"]}]`)); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
