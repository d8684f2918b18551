// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"bytes"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

// swapLogger points L at a buffer for the duration of the test.
func swapLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	t.Cleanup(func() { L = prev })
	return &buf
}

func TestLoggingHelpers_WriteToBuffer(t *testing.T) {
	buf := swapLogger(t)
	L.SetLevel(clog.DebugLevel)

	Debugf("hello %s", "dbg")
	Infof("info %d", 1)
	Warnf("warn")
	Errorf("err %v", "E")

	out := buf.String()
	for _, want := range []string{"hello dbg", "info 1", "warn", "err E"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %s", want, out)
		}
	}
}

func TestSetDebug(t *testing.T) {
	buf := swapLogger(t)

	SetDebug(false)
	Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug output leaked at info level: %s", buf.String())
	}

	SetDebug(true)
	Debugf("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug output missing at debug level: %s", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	buf := swapLogger(t)

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel(error) failed: %v", err)
	}
	Warnf("quiet")
	Errorf("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("unexpected output at error level: %s", out)
	}

	if err := SetLevel("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
