package warn

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarn_IncludesComponentAndMessage(t *testing.T) {
	var buf bytes.Buffer
	r := NewTo(&buf)
	r.Warn("sampler", "permission denied for pid %d", 123)

	out := buf.String()
	if !strings.Contains(out, "WARN sampler:") {
		t.Errorf("output %q missing component marker", out)
	}
	if !strings.Contains(out, "permission denied for pid 123") {
		t.Errorf("output %q missing formatted message", out)
	}
}

func TestLog_OmitsWarnMarker(t *testing.T) {
	var buf bytes.Buffer
	r := NewTo(&buf)
	r.Log("starting run")

	if strings.Contains(buf.String(), "WARN") {
		t.Errorf("Log() output should not contain WARN marker, got %q", buf.String())
	}
}
