package version

import (
	"strings"
	"testing"
)

func TestGetVersionDefault(t *testing.T) {
	if GetVersion() == "" {
		t.Fatal("build version must have a default")
	}
}

func TestStringContainsAllFields(t *testing.T) {
	s := String()
	for _, field := range []string{"version=", "commit=", "date="} {
		if !strings.Contains(s, field) {
			t.Errorf("String() lacks %q: %s", field, s)
		}
	}
}
