// Rasterizer: Scene -> 1200x630 PNG bytes.
//
// Text drawing follows the font.Drawer approach from golang.org/x/image,
// with Latin Modern Sans faces (regular and bold) embedded via go-fonts.
// Deterministic: the same scene always produces the same bytes.

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func hasPNGSignature(b []byte) bool {
	return len(b) >= len(pngSignature) && bytes.Equal(b[:len(pngSignature)], pngSignature)
}

var (
	fontOnce    sync.Once
	fontErr     error
	sansRegular *sfnt.Font
	sansBold    *sfnt.Font

	faceMu    sync.Mutex
	faceCache = map[faceKey]font.Face{}
)

type faceKey struct {
	size float64
	bold bool
}

func loadFonts() error {
	fontOnce.Do(func() {
		sansRegular, fontErr = opentype.Parse(lmsans10regular.TTF)
		if fontErr != nil {
			return
		}
		sansBold, fontErr = opentype.Parse(lmsans10bold.TTF)
	})
	return fontErr
}

// face returns a cached font face for a pixel size. Numeric weights 600 and
// up map to the bold face.
func face(size float64, weight int) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}

	key := faceKey{size: size, bold: weight >= 600}

	faceMu.Lock()
	defer faceMu.Unlock()

	if f, ok := faceCache[key]; ok {
		return f, nil
	}

	src := sansRegular
	if key.bold {
		src = sansBold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	faceCache[key] = f

	return f, nil
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")

	var c color.NRGBA
	c.A = 0xff

	switch len(s) {
	case 6:
		_, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B)
		return c, err
	case 3:
		_, err := fmt.Sscanf(s, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
		return c, err
	default:
		return c, fmt.Errorf("invalid hex color %q", s)
	}
}

func withAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(clampUnit(opacity)*255 + 0.5)
	return c
}

// rasterize composites a scene onto a fixed-size canvas and encodes it as
// PNG. Any error here is handled upstream by serving the fallback image.
func rasterize(scene Scene) ([]byte, error) {
	bg, err := parseHexColor(scene.Background.Color)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, scene.Width, scene.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if scene.Background.Image != nil {
		backdrop := transform.Resize(scene.Background.Image, scene.Width, scene.Height, transform.Linear)
		if scene.Background.Blur > 0 {
			backdrop = blur.Gaussian(backdrop, scene.Background.Blur)
		}
		draw.Draw(canvas, canvas.Bounds(), backdrop, image.Point{}, draw.Over)
	}

	if scene.Background.Dim > 0 {
		overlay := color.NRGBA{A: uint8(scene.Background.Dim*255 + 0.5)}
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(overlay), image.Point{}, draw.Over)
	}

	for _, item := range scene.Items {
		switch v := item.(type) {
		case SceneLogo:
			drawLogo(canvas, v)
		case SceneText:
			if err := drawTextBlock(canvas, v); err != nil {
				return nil, err
			}
		case ScenePill:
			if err := drawPill(canvas, v); err != nil {
				return nil, err
			}
		case SceneAvatar:
			if err := drawAvatar(canvas, v); err != nil {
				return nil, err
			}
		case SceneStatCard:
			if err := drawStatCard(canvas, v); err != nil {
				return nil, err
			}
		case SceneMatchup:
			if err := drawMatchup(canvas, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ---- Shapes ----

// roundedRectMask builds an anti-aliased alpha mask for a w x h rounded
// rectangle. radius is clamped to half the short side.
func roundedRectMask(w, h int, radius float64) *image.Alpha {
	short := w
	if h < short {
		short = h
	}
	if radius > float64(short)/2 {
		radius = float64(short) / 2
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			// Distance beyond the rounded corner, zero inside the body.
			dx, dy := 0.0, 0.0
			if px < radius {
				dx = radius - px
			} else if px > float64(w)-radius {
				dx = px - (float64(w) - radius)
			}
			if py < radius {
				dy = radius - py
			} else if py > float64(h)-radius {
				dy = py - (float64(h) - radius)
			}

			a := 1.0
			if dx > 0 && dy > 0 {
				d := math.Sqrt(dx*dx + dy*dy)
				if d > radius {
					// Soft single-pixel edge.
					a = 1 - (d - radius)
				}
			}
			if a > 0 {
				mask.SetAlpha(x, y, color.Alpha{A: uint8(clampUnit(a)*255 + 0.5)})
			}
		}
	}

	return mask
}

func circleMask(size int) *image.Alpha {
	return roundedRectMask(size, size, float64(size)/2)
}

func fillRoundedRect(dst *image.RGBA, x, y, w, h int, radius float64, c color.NRGBA) {
	mask := roundedRectMask(w, h, radius)
	r := image.Rect(x, y, x+w, y+h)
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

func fillCircle(dst *image.RGBA, x, y, size int, c color.NRGBA) {
	fillRoundedRect(dst, x, y, size, size, float64(size)/2, c)
}

// drawRing strokes a circle outline of the given width by drawing a filled
// circle and cutting out the interior alpha.
func drawRing(dst *image.RGBA, x, y, size int, width float64, c color.NRGBA) {
	outer := circleMask(size)
	inner := circleMask(size - int(2*width))

	off := int(width)
	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			a := int(outer.AlphaAt(px, py).A)
			ix, iy := px-off, py-off
			if ix >= 0 && iy >= 0 {
				a -= int(inner.AlphaAt(ix, iy).A)
			}
			if a < 0 {
				a = 0
			}
			outer.SetAlpha(px, py, color.Alpha{A: uint8(a)})
		}
	}

	r := image.Rect(x, y, x+size, y+size)
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, outer, image.Point{}, draw.Over)
}

// drawImageClipped scales an image into a w x h region clipped by a rounded
// rectangle (radius = size/2 gives a circle).
func drawImageClipped(dst *image.RGBA, img image.Image, x, y, w, h int, radius float64) {
	resized := transform.Resize(img, w, h, transform.Linear)
	mask := roundedRectMask(w, h, radius)
	r := image.Rect(x, y, x+w, y+h)
	draw.DrawMask(dst, r, resized, image.Point{}, mask, image.Point{}, draw.Over)
}

// ---- Text ----

func measure(f font.Face, s string, tracking float64) float64 {
	d := font.Drawer{Face: f}
	w := float64(d.MeasureString(s)) / 64
	if n := len([]rune(s)); n > 1 && tracking != 0 {
		w += tracking * float64(n-1)
	}
	return w
}

// wrapText word-wraps to maxWidth and clamps to maxLines, truncating the
// last line with an ellipsis when the text does not fit.
func wrapText(f font.Face, text string, maxWidth, tracking float64, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}

	words := strings.Fields(text)
	var lines []string
	var current string

	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(f, candidate, tracking) <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}

	if len(lines) <= maxLines {
		return lines
	}

	lines = lines[:maxLines]
	last := lines[maxLines-1]
	for last != "" && measure(f, last+textEllipsis, tracking) > maxWidth {
		r := []rune(last)
		last = strings.TrimRight(string(r[:len(r)-1]), " ")
	}
	lines[maxLines-1] = last + textEllipsis

	return lines
}

func drawLine(dst *image.RGBA, f font.Face, s string, x, y float64, c color.NRGBA, tracking float64) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}

	if tracking == 0 {
		d.DrawString(s)
		return
	}

	for _, r := range s {
		d.DrawString(string(r))
		d.Dot.X += fixed.Int26_6(tracking * 64)
	}
}

func drawTextBlock(dst *image.RGBA, t SceneText) error {
	f, err := face(t.Style.Size, t.Style.Weight)
	if err != nil {
		return err
	}

	lineHeight := t.Style.LineHeight
	if lineHeight == 0 {
		lineHeight = 1.1
	}
	maxLines := t.Style.MaxLines
	if maxLines == 0 {
		maxLines = 1
	}

	white, _ := parseHexColor(colorText)
	col := withAlpha(white, normalizeOpacity(t.Style.Opacity))

	ascent := float64(f.Metrics().Ascent) / 64
	lines := wrapText(f, t.Text, t.W, t.Style.Tracking, maxLines)
	for i, line := range lines {
		y := t.Y + ascent + float64(i)*t.Style.Size*lineHeight
		drawLine(dst, f, line, t.X, y, col, t.Style.Tracking)
	}

	return nil
}

func drawCenteredLine(dst *image.RGBA, f font.Face, s string, cx, y float64, c color.NRGBA) {
	w := measure(f, s, 0)
	drawLine(dst, f, s, cx-w/2, y, c, 0)
}

// ---- Primitives ----

// drawLogo paints either the supplied logo image or the procedural brand
// mark (rounded card with the IQ monogram).
func drawLogo(dst *image.RGBA, l SceneLogo) {
	x, y, size := int(l.X), int(l.Y), int(l.Size)

	if l.Image != nil {
		drawImageClipped(dst, l.Image, x, y, size, size, l.Radius)
		return
	}

	card, _ := parseHexColor(colorCard)
	stroke, _ := parseHexColor(colorStroke)
	accent, _ := parseHexColor(colorAccent)

	fillRoundedRect(dst, x, y, size, size, l.Radius, card)
	fillRoundedRect(dst, x+2, y+2, size-4, size-4, l.Radius-2, withAlpha(stroke, 0.35))
	fillRoundedRect(dst, x+4, y+4, size-8, size-8, l.Radius-3, card)

	markSize := l.Size * 0.42
	if f, err := face(markSize, 900); err == nil {
		ascent := float64(f.Metrics().Ascent) / 64
		baseline := l.Y + l.Size/2 + ascent/2 - markSize*0.12
		drawCenteredLine(dst, f, "IQ", l.X+l.Size/2, baseline, accent)
	}
}

const (
	pillHeight  = 52.0
	pillPadding = 22.0
	starSize    = 14.0
	starGap     = 8.0
)

func drawPill(dst *image.RGBA, p ScenePill) error {
	f, err := face(24, 700)
	if err != nil {
		return err
	}

	labelW := 0.0
	if p.Label != "" {
		labelW = measure(f, p.Label, 0)
	}
	starsW := 0.0
	if p.Stars > 0 {
		starsW = float64(p.Stars)*starSize + float64(p.Stars-1)*starGap
		if p.Label != "" {
			starsW += starGap * 2
		}
	}

	card, _ := parseHexColor(colorCard)
	accent, _ := parseHexColor(colorAccent)
	white, _ := parseHexColor(colorText)

	width := pillPadding*2 + labelW + starsW
	fillRoundedRect(dst, int(p.X), int(p.Y), int(width), int(pillHeight), pillHeight/2, card)

	cursor := p.X + pillPadding
	if p.Label != "" {
		ascent := float64(f.Metrics().Ascent) / 64
		drawLine(dst, f, p.Label, cursor, p.Y+(pillHeight-24)/2+ascent-2, withAlpha(white, 0.9), 0)
		cursor += labelW + starGap*2
	}
	for i := 0; i < p.Stars; i++ {
		cy := int(p.Y + (pillHeight-starSize)/2)
		fillCircle(dst, int(cursor), cy, int(starSize), accent)
		cursor += starSize + starGap
	}

	return nil
}

// drawAvatar paints one circular avatar with ring, falling back to a
// monogram disc, plus an optional one-line label beneath.
func drawAvatar(dst *image.RGBA, a SceneAvatar) error {
	x, y, size := int(a.X), int(a.Y), int(a.Size)

	stroke, _ := parseHexColor(colorStroke)
	card, _ := parseHexColor(colorCard)
	white, _ := parseHexColor(colorText)

	drawRing(dst, x-avatarRingWidth, y-avatarRingWidth, size+2*avatarRingWidth, avatarRingWidth, withAlpha(stroke, 0.6))

	if a.Image != nil {
		drawImageClipped(dst, a.Image, x, y, size, size, float64(size)/2)
	} else {
		fillCircle(dst, x, y, size, card)
		monoSize := a.Size * 0.38
		f, err := face(monoSize, 700)
		if err != nil {
			return err
		}
		ascent := float64(f.Metrics().Ascent) / 64
		baseline := a.Y + a.Size/2 + ascent/2 - monoSize*0.12
		drawCenteredLine(dst, f, a.Monogram, a.X+a.Size/2, baseline, withAlpha(white, 0.9))
	}

	if a.Label != "" {
		f, err := face(24, 600)
		if err != nil {
			return err
		}
		label := a.Label
		maxW := a.Size * 1.6
		if measure(f, label, 0) > maxW {
			for len([]rune(label)) > 1 && measure(f, label+textEllipsis, 0) > maxW {
				r := []rune(label)
				label = strings.TrimRight(string(r[:len(r)-1]), " ")
			}
			label += textEllipsis
		}
		ascent := float64(f.Metrics().Ascent) / 64
		drawCenteredLine(dst, f, label, a.X+a.Size/2, a.Y+a.Size+12+ascent, withAlpha(white, 0.8))
	}

	return nil
}

func drawStatCard(dst *image.RGBA, s SceneStatCard) error {
	card, _ := parseHexColor(colorCard)
	white, _ := parseHexColor(colorText)

	fillRoundedRect(dst, int(s.X), int(s.Y), int(s.W), int(s.H), 20, card)

	labelFace, err := face(24, 600)
	if err != nil {
		return err
	}
	valueFace, err := face(56, 800)
	if err != nil {
		return err
	}

	ascent := float64(labelFace.Metrics().Ascent) / 64
	drawLine(dst, labelFace, s.Label, s.X+28, s.Y+24+ascent, withAlpha(white, 0.65), 0)

	ascent = float64(valueFace.Metrics().Ascent) / 64
	drawLine(dst, valueFace, s.Value, s.X+28, s.Y+68+ascent, white, 0)

	return nil
}

const matchupAvatarSize = 120.0

func drawMatchup(dst *image.RGBA, m SceneMatchup) error {
	groupW := m.W * 0.34

	if err := drawMatchupSide(dst, m.Challenger, m.X, m.Y, groupW); err != nil {
		return err
	}
	if err := drawMatchupSide(dst, m.Opponent, m.X+m.W-groupW, m.Y, groupW); err != nil {
		return err
	}

	white, _ := parseHexColor(colorText)
	f, err := face(40, 800)
	if err != nil {
		return err
	}
	ascent := float64(f.Metrics().Ascent) / 64
	drawCenteredLine(dst, f, "VS", m.X+m.W/2, m.Y+matchupAvatarSize/2+ascent/2, withAlpha(white, 0.5))

	return nil
}

func drawMatchupSide(dst *image.RGBA, side MatchupSide, x, y, w float64) error {
	cx := x + w/2
	white, _ := parseHexColor(colorText)
	accent, _ := parseHexColor(colorAccent)

	avatar := SceneAvatar{
		X: cx - matchupAvatarSize/2, Y: y, Size: matchupAvatarSize,
		Image: side.Image, Monogram: side.Monogram, Label: side.Name,
	}
	if err := drawAvatar(dst, avatar); err != nil {
		return err
	}
	if side.Winner {
		drawRing(dst, int(avatar.X)-avatarRingWidth, int(avatar.Y)-avatarRingWidth,
			int(matchupAvatarSize)+2*avatarRingWidth, avatarRingWidth+1, accent)
	}

	cursor := y + matchupAvatarSize + 52
	if side.Score != "" {
		f, err := face(44, 800)
		if err != nil {
			return err
		}
		ascent := float64(f.Metrics().Ascent) / 64
		drawCenteredLine(dst, f, side.Score, cx, cursor+ascent, white)
		cursor += 58
	}
	if side.Time != "" {
		f, err := face(24, 500)
		if err != nil {
			return err
		}
		ascent := float64(f.Metrics().Ascent) / 64
		drawCenteredLine(dst, f, side.Time, cx, cursor+ascent, withAlpha(white, 0.65))
		cursor += 34
	}
	if side.Winner {
		f, err := face(22, 800)
		if err != nil {
			return err
		}
		ascent := float64(f.Metrics().Ascent) / 64
		drawCenteredLine(dst, f, "WINNER", cx, cursor+ascent, accent)
	}

	return nil
}
