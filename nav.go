package betafeatures

// PopupModule is the client bundle that renders the beta features discovery
// popup.
const PopupModule = "ext.betaFeatures.popup"

// NavLink is one entry in the ordered personal navigation list.
type NavLink struct {
	Key    string `json:"key"`
	Text   string `json:"text"`
	Href   string `json:"href"`
	Active bool   `json:"active,omitempty"`
}

// InsertNavLink returns a new link list identical to the input except that
// entry is spliced in immediately after the link whose Key equals afterKey.
// Anonymous users get the input back unchanged, as does a list without
// afterKey. The input slice is never modified.
func InsertNavLink(links []NavLink, afterKey string, entry NavLink, loggedIn bool) []NavLink {
	if !loggedIn {
		return links
	}

	out := make([]NavLink, 0, len(links)+1)
	for _, link := range links {
		out = append(out, link)
		if link.Key == afterKey {
			out = append(out, entry)
		}
	}
	return out
}

// RequestPopup asks for the discovery popup bundle to be loaded, unless the
// user has dismissed it via the popup-disable preference.
func RequestPopup(user *User, assets AssetLoader) {
	if user == nil || assets == nil {
		return
	}
	if user.Option(PopupDisable) == StateEnabled {
		return
	}
	assets.AddModule(PopupModule)
}
