package preset

import (
	"encoding/json"
	"errors"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"laser-prep/internal/dither"
	lpimage "laser-prep/internal/image"
)

func gradient(w, h int) *lpimage.Buffer {
	b := lpimage.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			b.Set(x, y, color.RGBA{R: v, G: v / 2, B: 255 - v, A: uint8(100 + y)})
		}
	}
	return b
}

func TestCatalogue(t *testing.T) {
	want := []string{
		"photoRealism", "trueTone", "deepBurn", "softDetail", "stoneSlate",
		"glassAcrylic", "forgiving", "edgePop", "highContrast", "pencilSketch",
	}
	if got := IDs(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("IDs() = %v", got)
	}

	for _, cfg := range All() {
		t.Run(cfg.ID, func(t *testing.T) {
			if err := cfg.Validate(); err != nil {
				t.Fatalf("invalid preset: %v", err)
			}
			got, err := Lookup(cfg.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got != cfg {
				t.Errorf("Lookup(%q) = %+v, want %+v", cfg.ID, got, cfg)
			}
			if cfg.Name == "" || cfg.Description == "" {
				t.Error("name and description are required")
			}
		})
	}
}

func TestUnknownPreset(t *testing.T) {
	out, err := Apply(gradient(4, 4), "not-a-real-preset")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if out != nil {
		t.Error("no buffer expected on error")
	}
	if !strings.Contains(err.Error(), "not-a-real-preset") {
		t.Errorf("error should name the id: %v", err)
	}
}

func TestApplyProducesBinaryOutput(t *testing.T) {
	src := gradient(32, 16)
	for _, id := range IDs() {
		t.Run(id, func(t *testing.T) {
			out, err := Apply(src, id)
			if err != nil {
				t.Fatal(err)
			}
			if out.Width != src.Width || out.Height != src.Height {
				t.Fatalf("size changed: %dx%d", out.Width, out.Height)
			}
			for i := 0; i < len(out.Data); i += 4 {
				r, g, b := out.Data[i], out.Data[i+1], out.Data[i+2]
				if (r != 0 && r != 255) || r != g || r != b {
					t.Fatalf("pixel %d not binary: %d %d %d", i/4, r, g, b)
				}
				if out.Data[i+3] != src.Data[i+3] {
					t.Fatalf("pixel %d alpha changed", i/4)
				}
			}
		})
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	src := gradient(8, 8)
	orig := src.Clone()
	if _, err := Apply(src, "edgePop"); err != nil {
		t.Fatal(err)
	}
	for i := range src.Data {
		if src.Data[i] != orig.Data[i] {
			t.Fatal("input buffer was modified")
		}
	}
}

func TestRunNeutralConfigOnlyDithers(t *testing.T) {
	src := gradient(16, 4)
	cfg := Config{ID: "custom", Adjustments: Adjustments{Gamma: 1}, Dithering: dither.Bayer4}

	got := Run(src, cfg)
	want := dither.Apply(src, dither.Bayer4)
	for i := range got.Data {
		if got.Data[i] != want.Data[i] {
			t.Fatal("neutral adjustments should leave only the dithering step")
		}
	}
}

func TestSketchOnFlatImageIsWhite(t *testing.T) {
	src := lpimage.NewFilled(10, 10, color.RGBA{R: 90, G: 60, B: 30, A: 255})
	out, err := Apply(src, "pencilSketch")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(out.Data); i += 4 {
		if out.Data[i] != 255 {
			t.Fatal("a flat image has no lines to sketch")
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		adj  Adjustments
		alg  dither.Algorithm
		ok   bool
	}{
		{"zero", Adjustments{}, dither.FloydSteinberg, true},
		{"brightness", Adjustments{Brightness: 300}, dither.FloydSteinberg, false},
		{"contrast", Adjustments{Contrast: -101}, dither.FloydSteinberg, false},
		{"gamma", Adjustments{Gamma: 11}, dither.FloydSteinberg, false},
		{"denoise", Adjustments{Denoise: 101}, dither.FloydSteinberg, false},
		{"sharpen", Adjustments{SharpenAmount: -1}, dither.FloydSteinberg, false},
		{"algorithm", Adjustments{}, dither.Algorithm(99), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Config{Adjustments: tc.adj, Dithering: tc.alg}.Validate()
			if (err == nil) != tc.ok {
				t.Fatalf("Validate() = %v, ok = %v", err, tc.ok)
			}
		})
	}
}

func TestConfigJSONUsesAlgorithmID(t *testing.T) {
	data, err := json.Marshal(HighContrast())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"dithering":"threshold"`) {
		t.Errorf("unexpected JSON: %s", data)
	}

	var back Config
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != HighContrast() {
		t.Errorf("round trip changed config: %+v", back)
	}
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary()

	mine := Config{ID: "walnut", Adjustments: Adjustments{Contrast: 20}, Dithering: dither.Atkinson}
	if err := lib.Add(mine); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := lib.Add(Config{ID: "trueTone"}); err == nil {
		t.Error("redefining a built-in preset should fail")
	}
	if err := lib.Add(Config{ID: "bad", Adjustments: Adjustments{Contrast: 500}}); err == nil {
		t.Error("out of range adjustments should fail")
	}
	if err := lib.Add(Config{ID: "alder", Name: "Alder"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if len(lib.Presets) != 2 || lib.Presets[0].ID != "alder" {
		t.Errorf("presets not sorted by name: %+v", lib.Presets)
	}
	if got, _ := lib.Get("walnut"); got.Name != "walnut" {
		t.Errorf("missing name should default to id, got %q", got.Name)
	}

	if cfg, err := lib.Lookup("deepBurn"); err != nil || cfg.ID != "deepBurn" {
		t.Errorf("Lookup built-in: %v", err)
	}
	if cfg, err := lib.Lookup("walnut"); err != nil || cfg.Dithering != dither.Atkinson {
		t.Errorf("Lookup user preset: %+v, %v", cfg, err)
	}
	if _, err := lib.Lookup("nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Lookup unknown: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sub", "presets.json")
	if err := lib.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}
	if got, ok := loaded.Get("walnut"); !ok || got.Adjustments.Contrast != 20 || got.Dithering != dither.Atkinson {
		t.Errorf("round trip lost preset: %+v", got)
	}

	lib.Remove("walnut")
	if _, ok := lib.Get("walnut"); ok {
		t.Error("Remove did not delete the preset")
	}

	empty, err := LoadLibrary(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil || len(empty.Presets) != 0 {
		t.Errorf("missing file should give an empty library, got %v", err)
	}
}
