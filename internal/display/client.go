// Package display drives a FlaschenTaschen LED matrix server over UDP.
// Frames are plain binary PPM (P6) packets with the FlaschenTaschen
// offset extension, one datagram per frame.
package display

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/tphakala/singspeak/internal/errors"
	"github.com/tphakala/singspeak/internal/logging"
)

// Color is one RGB pixel.
type Color struct {
	R, G, B uint8
}

// Common colors.
var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
	Green = Color{G: 255}
)

// ClientConfig describes the target matrix.
type ClientConfig struct {
	Host    string
	Port    int
	Width   int
	Height  int
	OffsetX int
	OffsetY int
	Layer   int

	// FlipHorizontal mirrors each row left to right when building the
	// packet, for matrices mounted with the panel reversed.
	FlipHorizontal bool
}

// Client holds a frame buffer and sends it to a FlaschenTaschen server.
// It is not safe for concurrent use.
type Client struct {
	cfg    ClientConfig
	conn   net.Conn
	frame  []byte // width*height*3, row-major RGB
	logger *slog.Logger
}

// NewClient connects to the matrix server. UDP is connectionless, so
// this only fails on bad addresses; an unreachable server is discovered
// at Send time, if at all.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Newf("invalid display size %dx%d", cfg.Width, cfg.Height).
			Component("display").
			Category(errors.CategoryValidation).
			Build()
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, errors.New(err).
			Component("display").
			Category(errors.CategoryNetwork).
			Context("address", addr).
			Build()
	}

	c := &Client{
		cfg:    cfg,
		conn:   conn,
		frame:  make([]byte, cfg.Width*cfg.Height*3),
		logger: logging.ForService("display"),
	}
	c.logger.Debug("display client connected",
		"address", addr,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"layer", cfg.Layer)
	return c, nil
}

// Width returns the frame width in pixels.
func (c *Client) Width() int { return c.cfg.Width }

// Height returns the frame height in pixels.
func (c *Client) Height() int { return c.cfg.Height }

// Clear fills the whole frame with one color.
func (c *Client) Clear(color Color) {
	for i := 0; i < len(c.frame); i += 3 {
		c.frame[i] = color.R
		c.frame[i+1] = color.G
		c.frame[i+2] = color.B
	}
}

// SetPixel writes one pixel. Out-of-bounds coordinates are ignored.
func (c *Client) SetPixel(x, y int, color Color) {
	if x < 0 || x >= c.cfg.Width || y < 0 || y >= c.cfg.Height {
		return
	}
	i := (y*c.cfg.Width + x) * 3
	c.frame[i] = color.R
	c.frame[i+1] = color.G
	c.frame[i+2] = color.B
}

// Pixel reads one pixel. Out-of-bounds coordinates read black.
func (c *Client) Pixel(x, y int) Color {
	if x < 0 || x >= c.cfg.Width || y < 0 || y >= c.cfg.Height {
		return Black
	}
	i := (y*c.cfg.Width + x) * 3
	return Color{R: c.frame[i], G: c.frame[i+1], B: c.frame[i+2]}
}

// buildPacket serializes the frame as a PPM P6 datagram. The "#FT: x y z"
// comment line carries offset and layer; the server treats a missing line
// as origin, layer zero.
func (c *Client) buildPacket() []byte {
	header := fmt.Sprintf("P6\n%d %d\n", c.cfg.Width, c.cfg.Height)
	if c.cfg.OffsetX != 0 || c.cfg.OffsetY != 0 || c.cfg.Layer != 0 {
		header += fmt.Sprintf("#FT: %d %d %d\n", c.cfg.OffsetX, c.cfg.OffsetY, c.cfg.Layer)
	}
	header += "255\n"

	packet := make([]byte, 0, len(header)+len(c.frame))
	packet = append(packet, header...)

	if !c.cfg.FlipHorizontal {
		return append(packet, c.frame...)
	}
	for y := 0; y < c.cfg.Height; y++ {
		row := c.frame[y*c.cfg.Width*3 : (y+1)*c.cfg.Width*3]
		for x := c.cfg.Width - 1; x >= 0; x-- {
			packet = append(packet, row[x*3], row[x*3+1], row[x*3+2])
		}
	}
	return packet
}

// Send transmits the current frame as one datagram.
func (c *Client) Send() error {
	if _, err := c.conn.Write(c.buildPacket()); err != nil {
		return errors.New(err).
			Component("display").
			Category(errors.CategoryNetwork).
			Context("operation", "send_frame").
			Build()
	}
	return nil
}

// Close releases the socket.
func (c *Client) Close() error {
	return c.conn.Close()
}
