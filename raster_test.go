package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterizeAllVariantFallbacks(t *testing.T) {
	for variant := range layouts {
		data, err := rasterize(render(variant, OgInput{}))
		require.NoError(t, err, variant)
		require.True(t, hasPNGSignature(data), variant)

		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err, variant)
		assert.Equal(t, canvasWidth, cfg.Width, variant)
		assert.Equal(t, canvasHeight, cfg.Height, variant)
	}
}

func TestRasterizeDeterministic(t *testing.T) {
	in := OgInput{ChallengerName: "Mike Jones", OpponentName: "Evan"}

	first, err := rasterize(render(VariantInvite, in))
	require.NoError(t, err)
	second, err := rasterize(render(VariantInvite, in))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRasterizeFullResultCard(t *testing.T) {
	avatar := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			avatar.SetNRGBA(x, y, color.NRGBA{R: uint8(4 * x), G: uint8(4 * y), B: 128, A: 255})
		}
	}

	scene := render(VariantResult, OgInput{
		ChallengerName:   "Mike",
		OpponentName:     "Evan",
		ChallengerScore:  "9/10",
		OpponentScore:    "7/10",
		ChallengerTime:   "26s",
		OpponentTime:     "1m 4s",
		Winner:           "challenger",
		ChallengerAvatar: avatar,
	})

	data, err := rasterize(scene)
	require.NoError(t, err)
	assert.True(t, hasPNGSignature(data))
}

func TestHasPNGSignature(t *testing.T) {
	assert.False(t, hasPNGSignature(nil))
	assert.False(t, hasPNGSignature([]byte("<html>not an image</html>")))
	assert.False(t, hasPNGSignature(pngSignature[:4]))
	assert.True(t, hasPNGSignature(append(append([]byte{}, pngSignature...), 0, 1, 2)))
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#0b0b0f")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x0b, G: 0x0b, B: 0x0f, A: 0xff}, c)

	c, err = parseHexColor("fff")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	_, err = parseHexColor("#not-a-color")
	assert.Error(t, err)
}

func TestWrapTextClampsWithEllipsis(t *testing.T) {
	f, err := face(30, 700)
	require.NoError(t, err)

	long := "This headline is far too long to fit on a single narrow line of text"
	lines := wrapText(f, long, 300, 0, 2)

	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], textEllipsis)

	short := wrapText(f, "Short", 300, 0, 2)
	require.Len(t, short, 1)
	assert.Equal(t, "Short", short[0])
}
