package display

const (
	charWidth   = 5
	charHeight  = 7
	charSpacing = 1
)

// glyphs holds a 5x7 bitmap per character, one byte per row, bit 4 the
// leftmost pixel. Lowercase letters render with the uppercase shapes.
var glyphs = map[byte][charHeight]byte{
	' ': {0b00000, 0b00000, 0b00000, 0b00000, 0b00000, 0b00000, 0b00000},
	'A': {0b01110, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'B': {0b11110, 0b10001, 0b10001, 0b11110, 0b10001, 0b10001, 0b11110},
	'C': {0b01110, 0b10001, 0b10000, 0b10000, 0b10000, 0b10001, 0b01110},
	'D': {0b11100, 0b10010, 0b10001, 0b10001, 0b10001, 0b10010, 0b11100},
	'E': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b11111},
	'F': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b10000},
	'G': {0b01110, 0b10001, 0b10000, 0b10111, 0b10001, 0b10001, 0b01111},
	'H': {0b10001, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'I': {0b01110, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'J': {0b00111, 0b00010, 0b00010, 0b00010, 0b00010, 0b10010, 0b01100},
	'K': {0b10001, 0b10010, 0b10100, 0b11000, 0b10100, 0b10010, 0b10001},
	'L': {0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b11111},
	'M': {0b10001, 0b11011, 0b10101, 0b10101, 0b10001, 0b10001, 0b10001},
	'N': {0b10001, 0b10001, 0b11001, 0b10101, 0b10011, 0b10001, 0b10001},
	'O': {0b01110, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'P': {0b11110, 0b10001, 0b10001, 0b11110, 0b10000, 0b10000, 0b10000},
	'Q': {0b01110, 0b10001, 0b10001, 0b10001, 0b10101, 0b10010, 0b01101},
	'R': {0b11110, 0b10001, 0b10001, 0b11110, 0b10100, 0b10010, 0b10001},
	'S': {0b01111, 0b10000, 0b10000, 0b01110, 0b00001, 0b00001, 0b11110},
	'T': {0b11111, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100},
	'U': {0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'V': {0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01010, 0b00100},
	'W': {0b10001, 0b10001, 0b10001, 0b10101, 0b10101, 0b10101, 0b01010},
	'X': {0b10001, 0b10001, 0b01010, 0b00100, 0b01010, 0b10001, 0b10001},
	'Y': {0b10001, 0b10001, 0b10001, 0b01010, 0b00100, 0b00100, 0b00100},
	'Z': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b10000, 0b11111},
	'0': {0b01110, 0b10001, 0b10011, 0b10101, 0b11001, 0b10001, 0b01110},
	'1': {0b00100, 0b01100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'2': {0b01110, 0b10001, 0b00001, 0b00010, 0b00100, 0b01000, 0b11111},
	'3': {0b11111, 0b00010, 0b00100, 0b00010, 0b00001, 0b10001, 0b01110},
	'4': {0b00010, 0b00110, 0b01010, 0b10010, 0b11111, 0b00010, 0b00010},
	'5': {0b11111, 0b10000, 0b11110, 0b00001, 0b00001, 0b10001, 0b01110},
	'6': {0b00110, 0b01000, 0b10000, 0b11110, 0b10001, 0b10001, 0b01110},
	'7': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b01000, 0b01000},
	'8': {0b01110, 0b10001, 0b10001, 0b01110, 0b10001, 0b10001, 0b01110},
	'9': {0b01110, 0b10001, 0b10001, 0b01111, 0b00001, 0b00010, 0b01100},
	'-': {0b00000, 0b00000, 0b00000, 0b01110, 0b00000, 0b00000, 0b00000},
	'.': {0b00000, 0b00000, 0b00000, 0b00000, 0b00000, 0b00100, 0b00100},
	'!': {0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b00000, 0b00100},
	'?': {0b01110, 0b10001, 0b00001, 0b00010, 0b00100, 0b00000, 0b00100},
}

// Font renders the built-in 5x7 glyphs at an integer scale.
type Font struct {
	Scale int

	// Mirror flips every glyph left to right at render time. Matrices
	// driven with FlipHorizontal reverse the whole frame, so glyphs are
	// pre-mirrored here to come out readable on the panel.
	Mirror bool
}

// NewFont creates a font at the given scale; scales below 1 become 1.
func NewFont(scale int) *Font {
	if scale < 1 {
		scale = 1
	}
	return &Font{Scale: scale}
}

func (f *Font) scale() int {
	if f.Scale < 1 {
		return 1
	}
	return f.Scale
}

// CharWidth returns the scaled width of one glyph cell.
func (f *Font) CharWidth() int { return charWidth * f.scale() }

// CharHeight returns the scaled height of one glyph cell.
func (f *Font) CharHeight() int { return charHeight * f.scale() }

// TextWidth returns the rendered width of text in pixels, spacing
// included between glyphs but not after the last one.
func (f *Font) TextWidth(text string) int {
	if len(text) == 0 {
		return 0
	}
	s := f.scale()
	return len(text)*charWidth*s + (len(text)-1)*charSpacing*s
}

func glyphFor(c byte) [charHeight]byte {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	g, ok := glyphs[c]
	if !ok {
		return glyphs['?']
	}
	return g
}

// RenderChar draws one glyph with its top-left corner at (x, y). Pixels
// outside the frame are clipped by the client.
func (f *Font) RenderChar(c *Client, ch byte, x, y int, color, bg Color) {
	g := glyphFor(ch)
	s := f.scale()
	for row := 0; row < charHeight; row++ {
		bits := g[row]
		for col := 0; col < charWidth; col++ {
			bit := charWidth - 1 - col
			if f.Mirror {
				bit = col
			}
			pc := bg
			if bits&(1<<bit) != 0 {
				pc = color
			}
			for dy := 0; dy < s; dy++ {
				for dx := 0; dx < s; dx++ {
					c.SetPixel(x+col*s+dx, y+row*s+dy, pc)
				}
			}
		}
	}
}

// RenderText draws text left to right starting at (x, y).
func (f *Font) RenderText(c *Client, text string, x, y int, color, bg Color) {
	s := f.scale()
	advance := (charWidth + charSpacing) * s
	for i := 0; i < len(text); i++ {
		f.RenderChar(c, text[i], x+i*advance, y, color, bg)
	}
}

// RenderTextCentered draws text centered both horizontally and
// vertically in the client's frame.
func (f *Font) RenderTextCentered(c *Client, text string, color, bg Color) {
	x := (c.Width() - f.TextWidth(text)) / 2
	y := (c.Height() - f.CharHeight()) / 2
	f.RenderText(c, text, x, y, color, bg)
}
