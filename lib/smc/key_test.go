// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		code     string
		expected Key
	}{
		{code: "TC0P", expected: 0x54433050},
		{code: "flt ", expected: 0x666c7420},
		{code: "sp78", expected: 0x73703738},
	}
	for _, test := range tests {
		t.Run(test.code, func(t *testing.T) {
			key, err := ParseKey(test.code)
			if err != nil {
				t.Fatalf("ParseKey(%q): %v", test.code, err)
			}
			if key != test.expected {
				t.Errorf("ParseKey(%q) = 0x%08x, want 0x%08x", test.code, uint32(key), uint32(test.expected))
			}
			if key.String() != test.code {
				t.Errorf("String() = %q, want %q", key.String(), test.code)
			}
		})
	}
}

func TestParseKeyRejects(t *testing.T) {
	for _, code := range []string{"", "TC0", "TC0PX", "T\x00\x01P"} {
		if _, err := ParseKey(code); err == nil {
			t.Errorf("ParseKey(%q) succeeded, want error", code)
		}
	}
}

func TestKeyStringNonPrintable(t *testing.T) {
	if got := Key(0x41000142).String(); got != "A??B" {
		t.Errorf("String() = %q, want %q", got, "A??B")
	}
}
