package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestStepConsoleSeverityTags(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	c := NewStepConsole(&buf)
	c.Begin("validate", "demo-bucket")
	c.Note("resource exists")
	c.Warn("no stack currently owns it")
	c.OK("validate", false)
	c.Fail("import", "ImportError", "still owned by StackA")

	out := buf.String()
	for _, want := range []string{
		"==> validate",
		"(demo-bucket)",
		"WARN no stack currently owns it",
		"OK validate",
		"FAIL import [ImportError] still owned by StackA",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStepConsoleNoopSuffix(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	c := NewStepConsole(&buf)
	c.OK("detach-source", true)
	if !strings.Contains(buf.String(), "already in desired state") {
		t.Fatalf("noop suffix missing:\n%s", buf.String())
	}
}

func TestConfigureColorModes(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	Configure("always", &buf)
	if color.NoColor {
		t.Fatal("always must force color on")
	}
	Configure("never", &buf)
	if !color.NoColor {
		t.Fatal("never must force color off")
	}
	// A bytes.Buffer is not a terminal, so auto disables color.
	Configure("auto", &buf)
	if !color.NoColor {
		t.Fatal("auto on a non-tty must disable color")
	}
}
