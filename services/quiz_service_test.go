package services

import (
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := GenerateCode()
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), codeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q, outside the alphabet", code, r)
			}
		}
	}
}

func TestGenerateCodeOmitsConfusables(t *testing.T) {
	for _, r := range "0O1IL" {
		if strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("alphabet must not contain %q", r)
		}
	}
}
