package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleGetPreferences assembles the beta features preference section for
// the user, persists any auto-enrollment decisions and returns the field
// specifications plus the requirement metadata.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}

	assembly, err := s.engine.Assemble(r.Context(), user)
	if err != nil {
		s.respondAssemblyError(w, r, err)
		return
	}

	// Enroll-on-first-view: the host persists the decisions right away.
	if err := s.engine.Apply(r.Context(), user.ID, assembly.Mutations); err != nil {
		s.logger.Error("failed to persist enrollment", "user", user.ID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Code: "ERR_PERSIST", Message: "Failed to persist enrollment"})
		return
	}

	render.JSON(w, r, assembly)
}

// handleSavePreferences processes a preference form submission. Checkbox
// values are read back through the same XOR semantics they were rendered
// with, saved, and the cached adoption counts adjusted.
func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}

	assembly, err := s.engine.Assemble(r.Context(), user)
	if err != nil {
		s.respondAssemblyError(w, r, err)
		return
	}

	reader := NewFormReader(r)
	oldOptions := make(map[string]betafeatures.OptionState)
	newOptions := make(map[string]betafeatures.OptionState)
	var features []string

	for _, spec := range assembly.Fields {
		if spec.Kind != betafeatures.FieldFeature && spec.Kind != betafeatures.FieldToggle {
			continue
		}
		field := betafeatures.CheckboxField{
			Name:    spec.Key,
			ID:      "mw-input-" + spec.Key,
			Invert:  spec.Invert,
			Default: user.Option(spec.Key) == betafeatures.StateEnabled,
		}
		state := betafeatures.StateDisabled
		if field.ReadFromRequest(reader) {
			state = betafeatures.StateEnabled
		}

		oldOptions[spec.Key] = user.Option(spec.Key)
		newOptions[spec.Key] = state
		if spec.Kind == betafeatures.FieldFeature {
			features = append(features, spec.Key)
		}
	}

	if err := s.users.SetOptions(r.Context(), user.ID, newOptions); err != nil {
		s.logger.Error("failed to save options", "user", user.ID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Code: "ERR_PERSIST", Message: "Failed to save preferences"})
		return
	}

	if s.counter != nil {
		s.counter.AdjustOnSave(r.Context(), features, oldOptions, newOptions)
	}

	render.NoContent(w, r)
}

// handleGetClientConfig returns the read-only requirement metadata map for
// the client runtime.
func (s *Server) handleGetClientConfig(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}

	assembly, err := s.engine.Assemble(r.Context(), user)
	if err != nil {
		s.respondAssemblyError(w, r, err)
		return
	}

	render.JSON(w, r, assembly.ClientConfig())
}

// handleGetCounts returns the approximate adoption counts for the requested
// features (?feature=a&feature=b).
func (s *Server) handleGetCounts(w http.ResponseWriter, r *http.Request) {
	if s.counter == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Code: "ERR_NO_COUNTER", Message: "User counts are not configured"})
		return
	}

	features := r.URL.Query()["feature"]
	if len(features) == 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Code: "ERR_NO_FEATURES", Message: "At least one feature parameter is required"})
		return
	}

	counts, err := s.counter.Counts(r.Context(), features)
	if err != nil {
		s.logger.Error("failed to read counts", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Code: "ERR_COUNTS", Message: "Failed to read user counts"})
		return
	}

	render.JSON(w, r, counts)
}

// loadUser builds the request-scoped user snapshot from the account store.
func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) (*betafeatures.User, bool) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Code: "ERR_NO_USER", Message: "A user ID is required"})
		return nil, false
	}

	options, err := s.users.Options(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to load user options", "user", userID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Code: "ERR_USER_STORE", Message: "Failed to load user options"})
		return nil, false
	}

	user := betafeatures.NewUser(userID, options)
	user.LoggedIn = true
	user.Skin = r.URL.Query().Get("skin")
	return user, true
}

// respondAssemblyError maps assembly failures to HTTP responses. A missing
// declaration field is a configuration bug surfaced to extension authors;
// the section fails closed rather than rendering a partial form.
func (s *Server) respondAssemblyError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *betafeatures.MissingFieldError
	if errors.As(err, &missing) {
		s.logger.Error("broken feature declaration",
			"feature", missing.Feature,
			"field", missing.Field,
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_MISSING_FIELD",
			Message: missing.Error(),
		})
		return
	}

	s.logger.Error("assembly failed", "error", err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, ErrorResponse{Code: "ERR_ASSEMBLY", Message: "Failed to assemble preferences"})
}
