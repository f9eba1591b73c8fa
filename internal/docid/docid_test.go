package docid

import (
	"strings"
	"testing"
)

func TestForNameStable(t *testing.T) {
	a := ForName("papers/attention.html")
	b := ForName("papers/attention.html")
	if a != b {
		t.Errorf("same name, different ids: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "doc:") {
		t.Errorf("id missing prefix: %q", a)
	}
}

func TestForNameDistinct(t *testing.T) {
	if ForName("a.html") == ForName("b.html") {
		t.Error("different names produced the same id")
	}
}

func TestForNameCleansRedundantSegments(t *testing.T) {
	if ForName("papers/x.html") != ForName("papers//./x.html") {
		t.Error("equivalent names should produce the same id")
	}
}
