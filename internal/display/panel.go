package display

import (
	"log/slog"

	"github.com/tphakala/singspeak/internal/logging"
)

// PanelConfig bundles the client settings with the rendering choices a
// mapping file carries.
type PanelConfig struct {
	Client ClientConfig

	Scale       int
	MirrorGlyph bool
	Color       Color
	Background  Color
}

// Panel is the high level text display: a client plus a font and the
// configured colors. ShowText replaces the whole frame.
type Panel struct {
	client *Client
	font   *Font
	color  Color
	bg     Color
	logger *slog.Logger
}

// NewPanel connects a panel. The zero scale renders at the default
// double size used on small matrices.
func NewPanel(cfg PanelConfig) (*Panel, error) {
	client, err := NewClient(cfg.Client)
	if err != nil {
		return nil, err
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = 2
	}
	font := NewFont(scale)
	font.Mirror = cfg.MirrorGlyph

	return &Panel{
		client: client,
		font:   font,
		color:  cfg.Color,
		bg:     cfg.Background,
		logger: logging.ForService("display"),
	}, nil
}

// ShowText clears the frame to the background color, renders text
// centered and sends the frame.
func (p *Panel) ShowText(text string) error {
	p.client.Clear(p.bg)
	p.font.RenderTextCentered(p.client, text, p.color, p.bg)
	return p.client.Send()
}

// Clear blanks the panel.
func (p *Panel) Clear() error {
	p.client.Clear(p.bg)
	return p.client.Send()
}

// Close releases the underlying socket.
func (p *Panel) Close() error {
	return p.client.Close()
}
