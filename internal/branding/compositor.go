package branding

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/postforge/postforge/internal/db/models"
)

// Layout constants for logo and slogan placement.
const (
	edgePadding      = 40  // px between the image edge and the logo
	gradientMaxAlpha = 220 // peak alpha of the gradient overlay
)

// Compositor renders company branding (gradient, logo, slogan) onto post
// images. All knobs come from the company profile; inputs are PNG or JPEG.
type Compositor struct{}

func New() *Compositor {
	return &Compositor{}
}

// Apply reads the image at srcPath, composites the profile's branding onto
// it, and writes the result to dstPath. The output format follows dstPath's
// extension (.png or .jpg).
func (c *Compositor) Apply(srcPath, dstPath string, profile *models.CompanyProfile) error {
	src, err := loadImage(srcPath)
	if err != nil {
		return fmt.Errorf("failed to load source image: %w", err)
	}

	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)

	if profile.GradientEnabled {
		gradientColor := parseHexColor(profile.GradientColor, color.RGBA{R: 0x3B, G: 0x82, B: 0xF6})
		height := canvas.Bounds().Dy() * profile.GradientHeightPercent / 100
		switch profile.GradientPosition {
		case models.GradientTop:
			drawGradient(canvas, gradientColor, height, true)
		case models.GradientBottom:
			drawGradient(canvas, gradientColor, height, false)
		default:
			drawGradient(canvas, gradientColor, height, true)
			drawGradient(canvas, gradientColor, height, false)
		}
	}

	if profile.LogoPath != "" {
		if err := c.drawLogo(canvas, profile); err != nil {
			// Logo failures degrade gracefully: the rest of the branding still lands.
			log.Printf("⚠️  Skipping logo overlay: %v", err)
		}
	}

	if profile.Slogan != "" {
		if err := drawSlogan(canvas, profile); err != nil {
			log.Printf("⚠️  Skipping slogan overlay: %v", err)
		}
	}

	return saveImage(dstPath, canvas)
}

// drawLogo scales the logo to logo_size_percent of the image height and
// places it in the profile's layout slot.
func (c *Compositor) drawLogo(canvas *image.RGBA, profile *models.CompanyProfile) error {
	logo, err := loadImage(profile.LogoPath)
	if err != nil {
		return fmt.Errorf("failed to load logo: %w", err)
	}

	bounds := canvas.Bounds()
	targetH := bounds.Dy() * profile.LogoSizePercent / 100
	if targetH < 1 {
		targetH = 1
	}
	ratio := float64(logo.Bounds().Dx()) / float64(logo.Bounds().Dy())
	targetW := int(float64(targetH) * ratio)
	if targetW < 1 {
		targetW = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), logo, logo.Bounds(), xdraw.Over, nil)

	x, y := logoOrigin(profile.LogoPosition, bounds, targetW, targetH)
	draw.Draw(canvas, image.Rect(x, y, x+targetW, y+targetH), scaled, image.Point{}, draw.Over)
	return nil
}

// logoOrigin maps a layout slot to pixel coordinates with edge padding.
func logoOrigin(position string, bounds image.Rectangle, w, h int) (int, int) {
	var x, y int
	switch position {
	case models.PositionTopLeft, models.PositionBottomLeft:
		x = bounds.Min.X + edgePadding
	case models.PositionTopRight, models.PositionBottomRight:
		x = bounds.Max.X - w - edgePadding
	default: // centered
		x = bounds.Min.X + (bounds.Dx()-w)/2
	}
	switch position {
	case models.PositionBottomCenter, models.PositionBottomLeft, models.PositionBottomRight:
		y = bounds.Max.Y - h - edgePadding
	default:
		y = bounds.Min.Y + edgePadding
	}
	return x, y
}

// drawSlogan renders the slogan in white at slogan_size_percent of the image
// height, centered horizontally in the top or bottom band.
func drawSlogan(canvas *image.RGBA, profile *models.CompanyProfile) error {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}

	bounds := canvas.Bounds()
	size := float64(bounds.Dy()) * float64(profile.SloganSizePercent) / 100
	if size < 8 {
		size = 8
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to build font face: %w", err)
	}
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: face,
	}

	textWidth := drawer.MeasureString(profile.Slogan).Ceil()
	x := bounds.Min.X + (bounds.Dx()-textWidth)/2
	metrics := face.Metrics()

	var baseline int
	if profile.SloganPosition == models.PositionTopCenter {
		baseline = bounds.Min.Y + edgePadding + metrics.Ascent.Ceil()
	} else {
		baseline = bounds.Max.Y - edgePadding - metrics.Descent.Ceil()
	}

	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(profile.Slogan)
	return nil
}

// drawGradient blends a vertical gradient band into the canvas. Alpha ramps
// from 0 at the inner edge to gradientMaxAlpha at the image edge.
func drawGradient(canvas *image.RGBA, c color.RGBA, height int, top bool) {
	bounds := canvas.Bounds()
	if height > bounds.Dy() {
		height = bounds.Dy()
	}
	for row := 0; row < height; row++ {
		// Distance from the outer edge determines strength.
		alpha := uint8(gradientMaxAlpha * (height - row) / height)
		var y int
		if top {
			y = bounds.Min.Y + row
		} else {
			y = bounds.Max.Y - 1 - row
		}
		overlay := color.RGBA{R: c.R, G: c.G, B: c.B, A: alpha}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			base := canvas.RGBAAt(x, y)
			canvas.SetRGBA(x, y, blend(base, overlay))
		}
	}
}

// blend composites src over dst with src-over alpha blending.
func blend(dst, src color.RGBA) color.RGBA {
	a := uint32(src.A)
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 255),
		A: 255,
	}
}

// parseHexColor parses "#RRGGBB" (or "RRGGBB"), returning fallback on any
// malformed input.
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b}
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func saveImage(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(f, img)
	}
}
