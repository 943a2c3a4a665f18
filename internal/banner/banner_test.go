package banner

import (
	"strings"
	"testing"
)

func TestBanner(t *testing.T) {
	got := Banner("v1.2.3")
	if !strings.Contains(got, "v1.2.3") {
		t.Errorf("Banner() missing version: %q", got)
	}
	if !strings.HasSuffix(got, "\n\n") {
		t.Errorf("Banner() should end with a blank line: %q", got)
	}
}

func TestPlain(t *testing.T) {
	got := Plain("dev")
	if !strings.Contains(got, "dev\nmountain names") {
		t.Errorf("Plain() = %q", got)
	}
}
