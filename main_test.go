package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustAbs(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", filepath.Join(wd, "photo.png")},
		{filepath.Join("out", "..", "sign.svg"), filepath.Join(wd, "sign.svg")},
		{filepath.Join(wd, "a", "b.lpjob"), filepath.Join(wd, "a", "b.lpjob")},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := mustAbs(tc.in); got != tc.want {
				t.Errorf("mustAbs(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
