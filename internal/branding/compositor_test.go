package branding

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/postforge/postforge/internal/db/models"
)

func writeTestPNG(t *testing.T, path string, w, h int, fill color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
}

func loadTestImage(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func testProfile() *models.CompanyProfile {
	p := &models.CompanyProfile{
		BrandingEnabled: true,
		GradientEnabled: true,
	}
	p.ApplyDefaults()
	return p
}

func TestApply_GradientDarkensEdges(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 200, 200, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	profile := testProfile()
	profile.GradientColor = "#000000"
	profile.GradientPosition = models.GradientBoth
	profile.GradientHeightPercent = 25

	if err := New().Apply(src, dst, profile); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out := loadTestImage(t, dst)
	topR, _, _, _ := out.At(100, 0).RGBA()
	bottomR, _, _, _ := out.At(100, 199).RGBA()
	midR, _, _, _ := out.At(100, 100).RGBA()

	if topR>>8 > 80 {
		t.Errorf("expected strong gradient at top edge, got R=%d", topR>>8)
	}
	if bottomR>>8 > 80 {
		t.Errorf("expected strong gradient at bottom edge, got R=%d", bottomR>>8)
	}
	if midR>>8 != 255 {
		t.Errorf("expected untouched middle, got R=%d", midR>>8)
	}
}

func TestApply_GradientTopOnlyLeavesBottomUntouched(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 100, 100, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	profile := testProfile()
	profile.GradientColor = "#000000"
	profile.GradientPosition = models.GradientTop

	if err := New().Apply(src, dst, profile); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out := loadTestImage(t, dst)
	bottomR, _, _, _ := out.At(50, 99).RGBA()
	if bottomR>>8 != 255 {
		t.Errorf("expected untouched bottom edge with top-only gradient, got R=%d", bottomR>>8)
	}
}

func TestApply_LogoPlacement(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	logo := filepath.Join(dir, "logo.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 400, 400, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	writeTestPNG(t, logo, 50, 50, color.RGBA{R: 255, G: 0, B: 0, A: 255})

	profile := testProfile()
	profile.GradientEnabled = false
	profile.LogoPath = logo
	profile.LogoPosition = models.PositionTopLeft
	profile.LogoSizePercent = 25 // 100px tall logo

	if err := New().Apply(src, dst, profile); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out := loadTestImage(t, dst)
	// A pixel inside the padded top-left slot should be red.
	r, g, _, _ := out.At(60, 60).RGBA()
	if r>>8 < 200 || g>>8 > 80 {
		t.Errorf("expected red logo pixel at (60,60), got R=%d G=%d", r>>8, g>>8)
	}
	// Opposite corner stays white.
	r2, g2, _, _ := out.At(390, 390).RGBA()
	if r2>>8 != 255 || g2>>8 != 255 {
		t.Errorf("expected white pixel at (390,390), got R=%d G=%d", r2>>8, g2>>8)
	}
}

func TestApply_LogoScalesByImageHeight(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	logo := filepath.Join(dir, "logo.png")
	dst := filepath.Join(dir, "out.png")
	// Landscape canvas: width and height scaling disagree here.
	writeTestPNG(t, src, 400, 200, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	writeTestPNG(t, logo, 50, 50, color.RGBA{R: 255, G: 0, B: 0, A: 255})

	profile := testProfile()
	profile.GradientEnabled = false
	profile.LogoPath = logo
	profile.LogoPosition = models.PositionTopLeft
	profile.LogoSizePercent = 20 // 20% of 200px height -> 40x40 logo

	if err := New().Apply(src, dst, profile); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out := loadTestImage(t, dst)
	redPixels := 0
	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := out.At(x, y).RGBA()
			if r>>8 > 200 && g>>8 < 80 && b>>8 < 80 {
				redPixels++
			}
		}
	}
	// 40x40 = 1600 with a little slack for resampling at the borders.
	if redPixels < 1500 || redPixels > 1700 {
		t.Errorf("expected ~1600 logo pixels for a 40x40 logo, got %d", redPixels)
	}
}

func TestApply_SloganRendersPixels(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 300, 300, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	profile := testProfile()
	profile.GradientEnabled = false
	profile.Slogan = "Hello World"
	profile.SloganPosition = models.PositionBottomCenter
	profile.SloganSizePercent = 8

	if err := New().Apply(src, dst, profile); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out := loadTestImage(t, dst)
	found := false
	for y := 200; y < 300 && !found; y++ {
		for x := 0; x < 300; x++ {
			r, _, _, _ := out.At(x, y).RGBA()
			if r>>8 > 200 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected white slogan pixels in the bottom band")
	}
}

func TestApply_MissingLogoDegradesGracefully(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 100, 100, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	profile := testProfile()
	profile.LogoPath = filepath.Join(dir, "missing.png")

	if err := New().Apply(src, dst, profile); err != nil {
		t.Fatalf("Apply should succeed without logo, got: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected output written: %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	fallback := color.RGBA{R: 0x3B, G: 0x82, B: 0xF6}
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#FF0000", color.RGBA{R: 255}},
		{"00ff00", color.RGBA{G: 255}},
		{"#3B82F6", fallback},
		{"", fallback},
		{"#FFF", fallback},
		{"not-a-color", fallback},
	}
	for _, tt := range tests {
		got := parseHexColor(tt.in, fallback)
		if got != tt.want {
			t.Errorf("parseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
