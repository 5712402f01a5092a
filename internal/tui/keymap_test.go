package tui

import "testing"

func TestKeyMapHelpBindingsEnabled(t *testing.T) {
	keys := newKeyMap()
	for _, b := range keys.ShortHelp() {
		if !b.Enabled() {
			t.Fatalf("short help binding %q is disabled", b.Help().Key)
		}
	}
	for _, row := range keys.FullHelp() {
		for _, b := range row {
			if !b.Enabled() {
				t.Fatalf("full help binding %q is disabled", b.Help().Key)
			}
		}
	}
}

func TestKeyMapNoDuplicateBindings(t *testing.T) {
	keys := newKeyMap()
	seen := map[string]string{}
	for _, row := range keys.FullHelp() {
		for _, b := range row {
			for _, k := range b.Keys() {
				if prior, ok := seen[k]; ok {
					t.Fatalf("key %q bound to both %q and %q", k, prior, b.Help().Desc)
				}
				seen[k] = b.Help().Desc
			}
		}
	}
}
