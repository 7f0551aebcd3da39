package selector

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		sel  string
		want Strategy
	}{
		{"//td[contains(text(),'No data')]", StrategyXPath},
		{".//input", StrategyXPath},
		{"/html/body/div[1]/form/input", StrategyXPath},
		{"button[type='submit']", StrategyCSS},
		{".btn-primary", StrategyCSS},
		{"#sidebar > ul > li a", StrategyCSS},
		{"input", StrategyCSS},
	}

	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			if got := StrategyFor(tt.sel); got != tt.want {
				t.Errorf("StrategyFor(%q) = %v, want %v", tt.sel, got, tt.want)
			}
		})
	}
}

func TestSet_Candidates_PreservesOrder(t *testing.T) {
	set := Set{
		"login_button": {"#app form button", "button[type='submit']", ".btn-primary"},
	}

	got := set.Candidates("login_button")
	want := []string{"#app form button", "button[type='submit']", ".btn-primary"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}

	if set.Candidates("unknown") != nil {
		t.Error("unknown target should yield nil")
	}
}

func TestSet_Merge(t *testing.T) {
	base := Set{
		"login_button": {".btn-primary"},
		"sidebar":      {"#sidebar"},
	}
	override := Set{
		"login_button": {"#new-login"},
		"extra":        {".extra"},
	}

	merged := base.Merge(override)

	if got := merged.Candidates("login_button"); !reflect.DeepEqual(got, []string{"#new-login"}) {
		t.Errorf("override not applied: %v", got)
	}
	if !merged.Has("sidebar") || !merged.Has("extra") {
		t.Error("merged set should keep base targets and add new ones")
	}
	if got := base.Candidates("login_button"); !reflect.DeepEqual(got, []string{".btn-primary"}) {
		t.Error("Merge must not mutate the base set")
	}
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"selectors/targets.yaml": &fstest.MapFile{Data: []byte(`
targets:
  login_button:
    - "#app form button"
    - "button[type='submit']"
  loading_overlay:
    - "div.vld-background"
`)},
	}

	set, err := LoadFromFS(fsys, "selectors/targets.yaml")
	if err != nil {
		t.Fatalf("LoadFromFS() error: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("loaded %d targets, want 2", len(set))
	}
	want := []string{"#app form button", "button[type='submit']"}
	if got := set.Candidates("login_button"); !reflect.DeepEqual(got, want) {
		t.Errorf("login_button = %v, want %v", got, want)
	}
}

func TestLoadFromFS_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no targets", "targets: {}"},
		{"empty chain", "targets:\n  login_button: []"},
		{"malformed yaml", "targets: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"targets.yaml": &fstest.MapFile{Data: []byte(tt.data)},
			}
			if _, err := LoadFromFS(fsys, "targets.yaml"); err == nil {
				t.Fatal("LoadFromFS() should fail")
			}
		})
	}
}
