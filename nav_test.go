package betafeatures

import (
	"testing"
)

func TestInsertNavLink(t *testing.T) {
	base := []NavLink{
		{Key: "watchlist", Text: "Watchlist", Href: "/watchlist"},
		{Key: "preferences", Text: "Preferences", Href: "/preferences"},
		{Key: "logout", Text: "Log out", Href: "/logout"},
	}
	entry := NavLink{Key: "betafeatures", Text: "Beta", Href: "/preferences#betafeatures"}

	t.Run("splices after the target key", func(t *testing.T) {
		out := InsertNavLink(base, "preferences", entry, true)
		if len(out) != 4 {
			t.Fatalf("Expected 4 links, got %d", len(out))
		}
		if out[2].Key != "betafeatures" {
			t.Errorf("Expected betafeatures right after preferences, got %s", out[2].Key)
		}
		if out[3].Key != "logout" {
			t.Errorf("Expected logout pushed to the end, got %s", out[3].Key)
		}
	})

	t.Run("anonymous users get the list unchanged", func(t *testing.T) {
		out := InsertNavLink(base, "preferences", entry, false)
		if len(out) != 3 {
			t.Errorf("Expected no insertion for anonymous users, got %d links", len(out))
		}
	})

	t.Run("absent key drops the entry", func(t *testing.T) {
		out := InsertNavLink(base, "no-such-key", entry, true)
		if len(out) != 3 {
			t.Errorf("Expected the entry to be dropped without an anchor, got %d links", len(out))
		}
	})

	t.Run("input slice is untouched", func(t *testing.T) {
		_ = InsertNavLink(base, "watchlist", entry, true)
		if len(base) != 3 || base[1].Key != "preferences" {
			t.Errorf("Input slice was modified: %v", base)
		}
	})
}

func TestRequestPopup(t *testing.T) {
	t.Run("loads the popup bundle", func(t *testing.T) {
		assets := &mockAssets{}
		RequestPopup(NewUser("u1", nil), assets)
		if !assets.Loaded(PopupModule) {
			t.Errorf("Expected %s to be requested", PopupModule)
		}
	})

	t.Run("respects the dismissal preference", func(t *testing.T) {
		assets := &mockAssets{}
		user := NewUser("u1", map[string]OptionState{PopupDisable: StateEnabled})
		RequestPopup(user, assets)
		if assets.Loaded(PopupModule) {
			t.Errorf("Popup requested despite dismissal")
		}
	})

	t.Run("nil user is a no-op", func(t *testing.T) {
		assets := &mockAssets{}
		RequestPopup(nil, assets)
		if assets.Loaded(PopupModule) {
			t.Errorf("Popup requested for nil user")
		}
	})
}
