//go:build !release

package log

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(log.Lshortfile)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	tests := []struct {
		name     string
		fn       func()
		expected string
	}{
		{
			name:     "Print",
			fn:       func() { Print("test print") },
			expected: "test print",
		},
		{
			name:     "Printf",
			fn:       func() { Printf("render took %dms", 12) },
			expected: "render took 12ms",
		},
		{
			name:     "Println",
			fn:       func() { Println("test println") },
			expected: "test println",
		},
		{
			name:     "Debug",
			fn:       func() { Debug("stage shading") },
			expected: "[DEBUG] stage shading",
		},
		{
			name:     "Debugf",
			fn:       func() { Debugf("clamped %s", "exposure") },
			expected: "[DEBUG] clamped exposure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn()
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected log to contain %q, but got %q", tt.expected, buf.String())
			}
			// Output(2) must attribute the line to this test file, not log.go.
			if !strings.Contains(buf.String(), "log_test.go") {
				t.Errorf("Expected caller file in output, got %q", buf.String())
			}
		})
	}
}
