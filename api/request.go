package api

import (
	"net/http"
	"strconv"

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// EditTokenField is the form field carrying the submission token.
const EditTokenField = "wpEditToken"

// formReader adapts an *http.Request to the betafeatures.FormReader
// interface consumed by the checkbox field.
type formReader struct {
	r *http.Request
}

// NewFormReader wraps the request. The form is parsed lazily by the accessor
// methods.
func NewFormReader(r *http.Request) betafeatures.FormReader {
	return &formReader{r: r}
}

// HasToken reports whether the request carries a submission token.
func (f *formReader) HasToken() bool {
	return f.r.FormValue(EditTokenField) != ""
}

// Has reports whether the named field was submitted at all. An unchecked
// checkbox is simply absent from the form, so presence matters independently
// of the value.
func (f *formReader) Has(name string) bool {
	_ = f.r.FormValue(name) // forces ParseForm
	_, ok := f.r.Form[name]
	return ok
}

// Bool returns the boolean value of the named field. Missing or unparsable
// values read as false, matching how browsers submit checkboxes.
func (f *formReader) Bool(name string) bool {
	v := f.r.FormValue(name)
	switch v {
	case "", "0", "off":
		return false
	case "1", "on":
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
