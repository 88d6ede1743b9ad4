package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitFiltersBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Init("warning", buf); err != nil {
		t.Fatalf("init: %v", err)
	}
	log := MustGetLogger("testmod")
	log.Infof("hidden %d", 1)
	log.Warningf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown 2") || !strings.Contains(out, "testmod") {
		t.Fatalf("warning line missing module or message: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("non-terminal writer must not be colorized: %q", out)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init("chatty", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}
