package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func formRequest(t *testing.T, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestFormReaderHasToken(t *testing.T) {
	reader := NewFormReader(formRequest(t, url.Values{EditTokenField: {"abc"}}))
	if !reader.HasToken() {
		t.Errorf("Expected token to be detected")
	}

	reader = NewFormReader(formRequest(t, url.Values{}))
	if reader.HasToken() {
		t.Errorf("Expected no token")
	}
}

func TestFormReaderHas(t *testing.T) {
	form := url.Values{
		"present":       {"1"},
		"present-empty": {""},
	}
	reader := NewFormReader(formRequest(t, form))

	if !reader.Has("present") {
		t.Errorf("Expected present field to be detected")
	}
	// Presence is independent of the value: an empty submission still counts.
	if !reader.Has("present-empty") {
		t.Errorf("Expected empty-valued field to count as present")
	}
	if reader.Has("absent") {
		t.Errorf("Expected absent field to be undetected")
	}
}

func TestFormReaderBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"1", true},
		{"on", true},
		{"true", true},
		{"0", false},
		{"off", false},
		{"false", false},
		{"", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			reader := NewFormReader(formRequest(t, url.Values{"field": {tt.value}}))
			if got := reader.Bool("field"); got != tt.expected {
				t.Errorf("Bool(%q): expected %v, got %v", tt.value, tt.expected, got)
			}
		})
	}

	reader := NewFormReader(formRequest(t, url.Values{}))
	if reader.Bool("absent") {
		t.Errorf("Expected absent field to read false")
	}
}
