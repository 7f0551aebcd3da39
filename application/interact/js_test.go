package interact

import (
	"strings"
	"testing"
	"time"
)

func TestResolveExpr_StrategyDispatch(t *testing.T) {
	tests := []struct {
		name string
		sel  string
		want string
	}{
		{"css selector", ".btn-primary", "document.querySelector"},
		{"css id selector", "#sidebar > ul > li a", "document.querySelector"},
		{"xpath double slash", "//td[contains(text(),'No data')]", "document.evaluate"},
		{"xpath relative", ".//input", "document.evaluate"},
		{"xpath absolute", "/html/body/div[1]/form/input", "document.evaluate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveExpr(tt.sel)
			if !strings.Contains(got, tt.want) {
				t.Errorf("resolveExpr(%q) = %q, want it to use %s", tt.sel, got, tt.want)
			}
		})
	}
}

func TestResolveExpr_QuotesSelector(t *testing.T) {
	got := resolveExpr(`td[title="it's"]`)
	if !strings.Contains(got, `"td[title=\"it's\"]"`) {
		t.Errorf("selector not safely quoted: %q", got)
	}
}

func TestResolveAllExpr_StrategyDispatch(t *testing.T) {
	if got := resolveAllExpr("ul.vs__dropdown-menu li"); !strings.Contains(got, "querySelectorAll") {
		t.Errorf("css chain should use querySelectorAll: %q", got)
	}
	if got := resolveAllExpr("//ul/li"); !strings.Contains(got, "ORDERED_NODE_SNAPSHOT_TYPE") {
		t.Errorf("xpath chain should snapshot: %q", got)
	}
}

func TestClickIndexExpr_UsesIndex(t *testing.T) {
	got := clickIndexExpr("ul li", 2)
	if !strings.Contains(got, "els[2].click()") {
		t.Errorf("clickIndexExpr should click index 2: %q", got)
	}
}

func TestClickIndexExpr_SameListAsTexts(t *testing.T) {
	// The option index is only meaningful inside the list it was computed
	// from, so both expressions must resolve the identical selector.
	sel := "ul.vs__dropdown-menu li"
	wantRef := resolveAllExpr(sel)

	if got := optionTextsExpr(sel); !strings.Contains(got, wantRef) {
		t.Errorf("optionTextsExpr does not read the expected list: %q", got)
	}
	if got := clickIndexExpr(sel, 1); !strings.Contains(got, wantRef) {
		t.Errorf("clickIndexExpr does not click into the expected list: %q", got)
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{DropdownRetries: 5}.withDefaults()

	if opts.DropdownRetries != 5 {
		t.Errorf("DropdownRetries = %d, want explicit 5", opts.DropdownRetries)
	}
	if opts.DefaultTimeout != 15*time.Second {
		t.Errorf("DefaultTimeout = %v, want default 15s", opts.DefaultTimeout)
	}
	if opts.TypeDelay != 50*time.Millisecond {
		t.Errorf("TypeDelay = %v, want default 50ms", opts.TypeDelay)
	}
}
