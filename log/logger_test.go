package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMinLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetMinLevel(LProgress)

	SetMinLevel(LWarn)
	Printf("[info] hidden %d", 1)
	Printf("[warn] visible %d", 2)
	Println("[error] visible", 3)
	Println("no level")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error(out)
	}
	for _, s := range []string{"[warn] visible 2", "[error] visible 3", "no level"} {
		if !strings.Contains(out, s) {
			t.Errorf("%q not in %q", s, out)
		}
	}

	buf.Reset()
	SetMinLevel(LDebug)
	Printf("[debug] shown")
	if !strings.Contains(buf.String(), "[debug] shown") {
		t.Error(buf.String())
	}
}

func TestStep(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	SetMinLevel(LProgress)

	done := Step("Sampling")
	done()
	out := buf.String()
	if !strings.Contains(out, "[step] Starting: Sampling") || !strings.Contains(out, "[step] Finished: Sampling in") {
		t.Error(out)
	}
}

func TestParseLevel(t *testing.T) {
	for name, expected := range map[string]Level{
		"warn":   LWarn,
		"[INFO]": LInfo,
		"debug":  LDebug,
	} {
		l, err := ParseLevel(name)
		if err != nil || l != expected {
			t.Errorf("%q: %v %v", name, l, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error")
	}
}
