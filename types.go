// Package betafeatures defines the core types used by the beta feature
// preference system.
package betafeatures

// FeatureRequirements carries extra conditions the client checks before it
// offers a feature: other beta features that must be enabled first, a browser
// blacklist, and a skin whitelist.
type FeatureRequirements struct {
	// Features lists keys of other beta features that must be enabled
	// before this one can be used.
	Features []string `json:"betafeatures,omitempty"`
	// Blacklist lists user agents the feature does not support.
	Blacklist []string `json:"blacklist,omitempty"`
	// Skins lists the skins the feature supports. Empty means all skins.
	Skins []string `json:"skins,omitempty"`
}

// FeatureDeclaration describes one beta feature as supplied by a Provider.
// Key doubles as the name of the persisted user option. Label and description
// are message references, opaque to this package.
type FeatureDeclaration struct {
	Key            string `json:"key"`
	LabelMessage   string `json:"label-message"`
	DescMessage    string `json:"desc-message"`
	InfoLink       string `json:"info-link"`
	DiscussionLink string `json:"discussion-link"`
	Screenshot     string `json:"screenshot,omitempty"`
	// Dependent marks the feature as gated: the dependency gate registered
	// under Key must pass before the feature is offered at all.
	Dependent bool `json:"dependent,omitempty"`
	// Group names the auto-enrollment group this feature belongs to.
	Group string `json:"group,omitempty"`
	// AutoEnrollment makes this feature a trigger: while it is enabled for a
	// user, features declaring the same string as their Group are enrolled.
	AutoEnrollment string               `json:"auto-enrollment,omitempty"`
	Requirements   *FeatureRequirements `json:"requirements,omitempty"`
}

// FieldKind distinguishes the synthetic preference rows from real feature
// fields in the assembled form specification.
type FieldKind string

// Field kinds emitted by the Engine.
const (
	FieldFeature     FieldKind = "feature"
	FieldToggle      FieldKind = "toggle"
	FieldDescription FieldKind = "description"
	FieldSeparator   FieldKind = "separator"
)

// FieldSpec is one row of the assembled preference form.
type FieldSpec struct {
	Key            string    `json:"key"`
	Kind           FieldKind `json:"kind"`
	LabelMessage   string    `json:"label-message,omitempty"`
	DescMessage    string    `json:"desc-message,omitempty"`
	InfoLink       string    `json:"info-link,omitempty"`
	DiscussionLink string    `json:"discussion-link,omitempty"`
	Screenshot     string    `json:"screenshot,omitempty"`
	// Invert flips the stored value relative to the rendered checkbox.
	Invert bool `json:"invert,omitempty"`
	// UserCount is the approximate number of users with the feature enabled.
	// Only meaningful when HasCount is true.
	UserCount int64 `json:"user-count,omitempty"`
	HasCount  bool  `json:"has-count,omitempty"`
	// FeatureCount parameterizes the description block with the number of
	// features on offer.
	FeatureCount int `json:"feature-count,omitempty"`
}

// FeatureMeta is the per-feature requirement metadata exposed to the client
// runtime. A nil entry means the feature has nothing to report.
type FeatureMeta struct {
	// Requirements holds display labels of required features the user has
	// not enabled yet.
	Requirements []string `json:"requirements,omitempty"`
	// Blacklist is carried through from the declaration.
	Blacklist []string `json:"blacklist,omitempty"`
	// SkinNotSupported is set when the current skin is absent from the
	// declared whitelist.
	SkinNotSupported bool `json:"skinNotSupported,omitempty"`
}

// Mutation records one user-state change decided during assembly. Mutations
// are returned to the caller rather than written behind its back; see
// Engine.Apply.
type Mutation struct {
	Key   string      `json:"key"`
	State OptionState `json:"state"`
}

// Assembly is the result of one Engine.Assemble call: the ordered field
// specifications, the requirement metadata map, and the auto-enrollment
// mutations still to be persisted.
type Assembly struct {
	Fields    []FieldSpec             `json:"fields"`
	Metadata  map[string]*FeatureMeta `json:"metadata"`
	Mutations []Mutation              `json:"mutations,omitempty"`
}

// ClientConfig returns the requirement metadata map for embedding into
// client-side runtime configuration. The returned map is a shallow copy; the
// metadata values are shared and must be treated as read-only.
func (a *Assembly) ClientConfig() map[string]*FeatureMeta {
	out := make(map[string]*FeatureMeta, len(a.Metadata))
	for k, v := range a.Metadata {
		out[k] = v
	}
	return out
}

// Declarations is an insertion-ordered collection of feature declarations.
// Declaring the same key again overwrites the previous declaration but keeps
// its original position, matching the override semantics of multi-provider
// composition.
type Declarations struct {
	order []string
	items map[string]FeatureDeclaration
}

// NewDeclarations returns an empty declaration set.
func NewDeclarations() *Declarations {
	return &Declarations{items: make(map[string]FeatureDeclaration)}
}

// Declare adds or overwrites the declaration for decl.Key.
func (d *Declarations) Declare(decl FeatureDeclaration) {
	if _, exists := d.items[decl.Key]; !exists {
		d.order = append(d.order, decl.Key)
	}
	d.items[decl.Key] = decl
}

// Get returns the declaration for key.
func (d *Declarations) Get(key string) (FeatureDeclaration, bool) {
	decl, ok := d.items[key]
	return decl, ok
}

// Keys returns the declaration keys in insertion order.
func (d *Declarations) Keys() []string {
	keys := make([]string, len(d.order))
	copy(keys, d.order)
	return keys
}

// Len returns the number of declarations.
func (d *Declarations) Len() int {
	return len(d.order)
}

// Config holds the internal configuration for an Engine instance. It is
// populated by applying functional Options when a new Engine is created with
// New().
type Config struct {
	counter *Counter
	users   UserStore
	assets  AssetLoader
	logger  Logger
}

// Option configures an Engine instance.
type Option func(*Config)

// WithCounter sets the Counter used to merge per-feature user counts into
// the assembled fields. Without one, fields carry no counts.
func WithCounter(c *Counter) Option {
	return func(cfg *Config) {
		cfg.counter = c
	}
}

// WithUserStore sets the account store used by Engine.Apply to persist
// auto-enrollment mutations.
func WithUserStore(s UserStore) Option {
	return func(cfg *Config) {
		cfg.users = s
	}
}

// WithAssets sets the asset loader used to request client bundles.
func WithAssets(a AssetLoader) Option {
	return func(cfg *Config) {
		cfg.assets = a
	}
}

// WithLogger sets the Logger implementation for the Engine.
func WithLogger(l Logger) Option {
	return func(cfg *Config) {
		cfg.logger = l
	}
}
