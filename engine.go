// engine.go
package betafeatures

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Well-known preference keys.
const (
	// AutoEnrollAll is the global toggle: while enabled, every beta feature
	// the user has no opinion on is enrolled automatically.
	AutoEnrollAll = "beta-feature-auto-enroll"
	// PopupDisable dismisses the discovery popup. The checkbox for it is
	// inverted: the user checks "show me new betas" and the stored option
	// records the opposite.
	PopupDisable = "betafeatures-popup-disable"
)

// Keys of the synthetic description and separator rows.
const (
	fieldKeyDescription = "betafeatures-description"
	fieldKeySeparator   = "betafeatures-separator"
)

// Engine assembles the beta features preference section for one user. It
// collects declarations from registered providers, resolves dependency gates
// and auto-enrollment, validates declarations and merges in adoption counts.
//
// Assemble is a pure query as far as the caller's stores are concerned:
// enrollment decisions come back as Mutations and are only persisted through
// an explicit Apply call.
type Engine struct {
	mu        sync.RWMutex
	config    *Config
	providers []Provider
	gates     map[string]Gate
}

// New creates an Engine configured by the given options.
func New(opts ...Option) *Engine {
	cfg := &Config{
		logger: NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Engine{
		config: cfg,
		gates:  make(map[string]Gate),
	}
}

// RegisterProvider adds a declaration provider. Providers run in registration
// order on every assembly.
func (e *Engine) RegisterProvider(p Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.providers = append(e.providers, p)
}

// RegisterGate registers the dependency check for a feature key. A feature
// declared Dependent with no registered gate passes by default.
func (e *Engine) RegisterGate(key string, g Gate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gates[key] = g
}

// Assemble builds the preference field specifications and requirement
// metadata for the user. A declaration missing a required field aborts the
// whole call with a MissingFieldError; gate failures and count staleness are
// absorbed silently.
func (e *Engine) Assemble(ctx context.Context, user *User) (*Assembly, error) {
	if user == nil {
		return nil, ErrInvalidInput
	}

	providers, gates := e.snapshot()

	// 1. Collect declarations; later ones for the same key win.
	decls := NewDeclarations()
	for _, p := range providers {
		if err := p(ctx, user, decls); err != nil {
			return nil, fmt.Errorf("declaration provider failed: %w", err)
		}
	}

	// 3. Adoption counts, best effort. A stale or unavailable count is never
	// a reason to fail the preferences page.
	var counts map[string]int64
	if e.config.counter != nil {
		var err error
		counts, err = e.config.counter.Counts(ctx, decls.Keys())
		if err != nil {
			e.config.logger.Warn("user counts unavailable", "error", err)
			counts = nil
		}
	}

	// 5. Auto-enrollment trigger index over every declaration, gated or not.
	triggers := make(map[string]string)
	for _, key := range decls.Keys() {
		if d, _ := decls.Get(key); d.AutoEnrollment != "" {
			triggers[d.AutoEnrollment] = key
		}
	}

	// 6a. Dependency gates. A failing or erroring gate excludes the feature
	// entirely: it appears in neither the fields nor the metadata.
	offered := make([]string, 0, decls.Len())
	for _, key := range decls.Keys() {
		d, _ := decls.Get(key)
		if d.Dependent {
			if gate, ok := gates[key]; ok {
				pass, err := gate(ctx, user)
				if err != nil {
					e.config.logger.Warn("dependency gate errored", "feature", key, "error", err)
					continue
				}
				if !pass {
					continue
				}
			}
		}
		offered = append(offered, key)
	}

	// 2 + 6b/6c. Synthetic fields first, then the validated feature fields
	// in collection order.
	state := user.optionsCopy()
	fields := make([]FieldSpec, 0, len(offered)+4)
	fields = append(fields, syntheticFields(len(offered))...)

	for _, key := range offered {
		d, _ := decls.Get(key)
		spec, err := buildFieldSpec(d)
		if err != nil {
			return nil, err
		}
		if n, ok := counts[key]; ok {
			spec.UserCount = n
			spec.HasCount = true
		}
		fields = append(fields, spec)
	}

	// 6d/6e. Auto-enrollment. Enrolling one feature can make it a live
	// trigger for another, so iterate until nothing changes; map collection
	// order must not decide whether a chained enrollment lands.
	var mutations []Mutation
	globalOn := state[AutoEnrollAll] == StateEnabled
	for {
		changed := false
		for _, key := range offered {
			if state[key] != StateUnset {
				continue
			}
			d, _ := decls.Get(key)
			enroll := globalOn
			if !enroll && d.Group != "" {
				if trigger, ok := triggers[d.Group]; ok && state[trigger] == StateEnabled {
					enroll = true
				}
			}
			if enroll {
				state[key] = StateEnabled
				mutations = append(mutations, Mutation{Key: key, State: StateEnabled})
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	// 7. Requirement metadata, after enrollment so it reflects final state.
	metadata := make(map[string]*FeatureMeta, len(offered))
	for _, key := range offered {
		d, _ := decls.Get(key)
		metadata[key] = buildFeatureMeta(d, decls, state, user.Skin)
	}

	return &Assembly{
		Fields:    fields,
		Metadata:  metadata,
		Mutations: mutations,
	}, nil
}

// Apply persists assembly mutations through the configured user store.
func (e *Engine) Apply(ctx context.Context, userID string, mutations []Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	if e.config.users == nil {
		return ErrNoUserStore
	}
	options := make(map[string]OptionState, len(mutations))
	for _, m := range mutations {
		options[m.Key] = m.State
	}
	if err := e.config.users.SetOptions(ctx, userID, options); err != nil {
		return fmt.Errorf("failed to apply enrollment mutations: %w", err)
	}
	return nil
}

// snapshot copies the registries so assembly never holds the lock across
// provider or gate callbacks.
func (e *Engine) snapshot() ([]Provider, map[string]Gate) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	providers := make([]Provider, len(e.providers))
	copy(providers, e.providers)

	gates := make(map[string]Gate, len(e.gates))
	for k, g := range e.gates {
		gates[k] = g
	}
	return providers, gates
}

// syntheticFields returns the fixed rows inserted ahead of any feature field:
// the popup dismiss toggle, the section description, the global auto-enroll
// toggle and a separator.
func syntheticFields(featureCount int) []FieldSpec {
	return []FieldSpec{
		{
			Key:          PopupDisable,
			Kind:         FieldToggle,
			LabelMessage: "betafeatures-popup-disable",
			Invert:       true,
		},
		{
			Key:          fieldKeyDescription,
			Kind:         FieldDescription,
			DescMessage:  "betafeatures-section-desc",
			FeatureCount: featureCount,
		},
		{
			Key:            AutoEnrollAll,
			Kind:           FieldToggle,
			LabelMessage:   "betafeatures-auto-enroll",
			DescMessage:    "betafeatures-auto-enroll-desc",
			InfoLink:       "https://mediawiki.org/wiki/Extension:BetaFeatures/Auto-enrollment",
			DiscussionLink: "https://mediawiki.org/wiki/Extension_talk:BetaFeatures/Auto-enrollment",
		},
		{
			Key:  fieldKeySeparator,
			Kind: FieldSeparator,
		},
	}
}

// buildFeatureMeta resolves a declaration's requirements against the final
// option state. It returns nil when there is nothing the client needs to
// know about.
func buildFeatureMeta(d FeatureDeclaration, decls *Declarations, state map[string]OptionState, skin string) *FeatureMeta {
	if d.Requirements == nil {
		return nil
	}

	meta := &FeatureMeta{}
	populated := false

	// Only required features the user has not enabled yet are surfaced,
	// resolved to their display labels.
	for _, req := range d.Requirements.Features {
		if state[req] == StateEnabled {
			continue
		}
		label := req
		if rd, ok := decls.Get(req); ok && rd.LabelMessage != "" {
			label = rd.LabelMessage
		}
		meta.Requirements = append(meta.Requirements, label)
		populated = true
	}

	if len(d.Requirements.Blacklist) > 0 {
		meta.Blacklist = slices.Clone(d.Requirements.Blacklist)
		populated = true
	}

	if len(d.Requirements.Skins) > 0 && !slices.Contains(d.Requirements.Skins, skin) {
		meta.SkinNotSupported = true
		populated = true
	}

	if !populated {
		return nil
	}
	return meta
}
