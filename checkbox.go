package betafeatures

import (
	"html/template"
	"sort"
	"strings"
)

// CheckboxModule is the client asset bundle requested whenever a styled
// checkbox is rendered.
const CheckboxModule = "ext.betaFeatures"

// FormReader exposes the request-bound primitives the checkbox needs: whether
// the request carries a submission token, whether a named value is present,
// and the boolean value of a named field.
type FormReader interface {
	HasToken() bool
	Has(name string) bool
	Bool(name string) bool
}

// CheckboxField renders a styled two-state checkbox and reads its value back
// from a submitted request. With Invert set, the stored value is the opposite
// of what the user visually sees checked; Render and ReadFromRequest apply
// the inversion symmetrically so a round trip preserves the displayed state.
type CheckboxField struct {
	Name     string
	ID       string
	Label    string
	Invert   bool
	Disabled bool
	// Default is returned by ReadFromRequest when the request carries
	// neither a token nor a value for Name.
	Default bool
	// Assets, when set, is asked to load CheckboxModule on render.
	Assets AssetLoader
}

// Render produces the label-wrapped checkbox markup for the given stored
// value. Extra attributes are rendered on the input element in sorted order.
func (f *CheckboxField) Render(value bool, attrs map[string]string) template.HTML {
	effective := value != f.Invert

	if f.Assets != nil {
		f.Assets.AddModule(CheckboxModule)
	}

	labelClasses := []string{"mw-ui-styled-checkbox-label"}
	if f.Disabled {
		labelClasses = append(labelClasses, "mw-ui-disabled")
	}
	if effective {
		labelClasses = append(labelClasses, "mw-ui-checked")
	}

	var b strings.Builder
	b.WriteString(`<label for="`)
	b.WriteString(template.HTMLEscapeString(f.ID))
	b.WriteString(`" class="`)
	b.WriteString(strings.Join(labelClasses, " "))
	b.WriteString(`">`)

	b.WriteString(`<input type="checkbox" id="`)
	b.WriteString(template.HTMLEscapeString(f.ID))
	b.WriteString(`" name="`)
	b.WriteString(template.HTMLEscapeString(f.Name))
	b.WriteString(`" class="`)
	b.WriteString(f.inputClass(attrs))
	b.WriteString(`"`)
	for _, k := range sortedAttrKeys(attrs) {
		if k == "class" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(template.HTMLEscapeString(k))
		b.WriteString(`="`)
		b.WriteString(template.HTMLEscapeString(attrs[k]))
		b.WriteString(`"`)
	}
	if effective {
		b.WriteString(` checked="checked"`)
	}
	if f.Disabled {
		b.WriteString(` disabled="disabled"`)
	}
	b.WriteString(`/>&#160;`)

	b.WriteString(`</label>`)

	b.WriteString(`<label for="`)
	b.WriteString(template.HTMLEscapeString(f.ID))
	b.WriteString(`" class="mw-ui-text-check-label">`)
	b.WriteString(template.HTMLEscapeString(f.Label))
	b.WriteString(`</label>`)

	return template.HTML(b.String())
}

// ReadFromRequest returns the stored value implied by the request. Without a
// submission token or an explicit value for the field name it returns
// Default; otherwise the raw submitted boolean XOR Invert.
func (f *CheckboxField) ReadFromRequest(r FormReader) bool {
	// GetCheck-style presence tests won't work for checkboxes: an unchecked
	// box simply isn't submitted. Read the value only when the form was
	// actually posted (token present) or the field carries a value.
	if !r.HasToken() && !r.Has(f.Name) {
		return f.Default
	}
	return r.Bool(f.Name) != f.Invert
}

func (f *CheckboxField) inputClass(attrs map[string]string) string {
	classes := []string{}
	if c, ok := attrs["class"]; ok && c != "" {
		classes = append(classes, c)
	}
	classes = append(classes, "mw-ui-checkbox")
	return strings.Join(classes, " ")
}

func sortedAttrKeys(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
