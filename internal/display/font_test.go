package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextWidth(t *testing.T) {
	t.Parallel()

	f := NewFont(1)
	assert.Equal(t, 0, f.TextWidth(""))
	assert.Equal(t, 5, f.TextWidth("a"))
	assert.Equal(t, 11, f.TextWidth("do"))

	f = NewFont(2)
	assert.Equal(t, 22, f.TextWidth("do"))
	assert.Equal(t, 10, f.CharWidth())
	assert.Equal(t, 14, f.CharHeight())
}

func TestNewFontClampsScale(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, NewFont(0).Scale)
	assert.Equal(t, 1, NewFont(-3).Scale)
	assert.Equal(t, 3, NewFont(3).Scale)
}

func TestRenderCharPixels(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, ClientConfig{Width: charWidth, Height: charHeight})
	f := NewFont(1)
	f.RenderChar(c, 'I', 0, 0, White, Black)

	// Top row of I is .###.
	assert.Equal(t, Black, c.Pixel(0, 0))
	assert.Equal(t, White, c.Pixel(1, 0))
	assert.Equal(t, White, c.Pixel(2, 0))
	assert.Equal(t, White, c.Pixel(3, 0))
	assert.Equal(t, Black, c.Pixel(4, 0))

	// The stem runs down the center column.
	for y := 1; y < charHeight-1; y++ {
		assert.Equal(t, White, c.Pixel(2, y), "row %d", y)
	}
}

func TestRenderCharMirrored(t *testing.T) {
	t.Parallel()

	// Top row of L lights only the leftmost pixel; mirrored it moves to
	// the rightmost column.
	c := newTestClient(t, ClientConfig{Width: charWidth, Height: charHeight})
	f := NewFont(1)
	f.RenderChar(c, 'L', 0, 0, White, Black)
	assert.Equal(t, White, c.Pixel(0, 0))
	assert.Equal(t, Black, c.Pixel(4, 0))

	m := newTestClient(t, ClientConfig{Width: charWidth, Height: charHeight})
	f.Mirror = true
	f.RenderChar(m, 'L', 0, 0, White, Black)
	assert.Equal(t, Black, m.Pixel(0, 0))
	assert.Equal(t, White, m.Pixel(4, 0))
}

func TestLowercaseSharesUppercaseGlyphs(t *testing.T) {
	t.Parallel()

	upper := newTestClient(t, ClientConfig{Width: charWidth, Height: charHeight})
	lower := newTestClient(t, ClientConfig{Width: charWidth, Height: charHeight})
	f := NewFont(1)
	f.RenderChar(upper, 'R', 0, 0, White, Black)
	f.RenderChar(lower, 'r', 0, 0, White, Black)

	assert.Equal(t, upper.frame, lower.frame)
}

func TestUnknownGlyphFallsBack(t *testing.T) {
	t.Parallel()

	unknown := newTestClient(t, ClientConfig{Width: charWidth, Height: charHeight})
	question := newTestClient(t, ClientConfig{Width: charWidth, Height: charHeight})
	f := NewFont(1)
	f.RenderChar(unknown, '#', 0, 0, White, Black)
	f.RenderChar(question, '?', 0, 0, White, Black)

	assert.Equal(t, question.frame, unknown.frame)
}

func TestRenderCharScaled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, ClientConfig{Width: 10, Height: 14})
	f := NewFont(2)
	f.RenderChar(c, 'L', 0, 0, White, Black)

	// Each glyph pixel becomes a 2x2 block.
	for _, p := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		assert.Equal(t, White, c.Pixel(p[0], p[1]), "pixel %v", p)
	}
	assert.Equal(t, Black, c.Pixel(2, 0))
}

func TestRenderTextCentered(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, ClientConfig{Width: 45, Height: 35})
	f := NewFont(2)
	f.RenderTextCentered(c, "do", White, Black)

	// Width 22 centers at x=11, height 14 at y=10; the top-left corner of
	// the D glyph is lit.
	require.Equal(t, 22, f.TextWidth("do"))
	assert.Equal(t, White, c.Pixel(11, 10))
	assert.Equal(t, Black, c.Pixel(0, 0))
	assert.Equal(t, Black, c.Pixel(44, 34))
}
