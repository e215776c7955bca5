// validation.go
package betafeatures

// requiredDeclarationFields maps declaration fields to whether they are
// mandatory. The link pair could probably stop being required at a later
// date, but currently the design needs both.
var requiredDeclarationFields = []struct {
	name     string
	required bool
	value    func(FeatureDeclaration) string
}{
	{"label-message", true, func(d FeatureDeclaration) string { return d.LabelMessage }},
	{"desc-message", true, func(d FeatureDeclaration) string { return d.DescMessage }},
	{"info-link", true, func(d FeatureDeclaration) string { return d.InfoLink }},
	{"discussion-link", true, func(d FeatureDeclaration) string { return d.DiscussionLink }},
	{"screenshot", false, func(d FeatureDeclaration) string { return d.Screenshot }},
}

// buildFieldSpec validates a declaration's required fields and converts it
// into a form field specification. A missing required field yields a
// MissingFieldError naming the feature key and field.
func buildFieldSpec(d FeatureDeclaration) (FieldSpec, error) {
	if d.Key == "" {
		return FieldSpec{}, ErrInvalidKey
	}

	for _, f := range requiredDeclarationFields {
		if f.value(d) == "" && f.required {
			return FieldSpec{}, &MissingFieldError{Feature: d.Key, Field: f.name}
		}
	}

	return FieldSpec{
		Key:            d.Key,
		Kind:           FieldFeature,
		LabelMessage:   d.LabelMessage,
		DescMessage:    d.DescMessage,
		InfoLink:       d.InfoLink,
		DiscussionLink: d.DiscussionLink,
		Screenshot:     d.Screenshot,
	}, nil
}
