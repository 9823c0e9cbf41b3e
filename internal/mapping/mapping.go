// Package mapping loads the XML note-to-syllable mapping that drives the
// singing pipeline: which syllable each MIDI note speaks, plus the remote
// display, server and speech defaults bundled in the same file.
package mapping

import (
	"encoding/xml"
	"os"

	"github.com/tphakala/singspeak/internal/errors"
)

// Syllable is one singable text fragment.
type Syllable struct {
	ID   int    `xml:"id,attr"`
	Text string `xml:"text,attr"`
}

// NoteMapping binds a MIDI note to a syllable.
type NoteMapping struct {
	MIDINote   int `xml:"midi,attr"`
	SyllableID int `xml:"syllable_id,attr"`
}

// ServerConfig locates the remote display server.
type ServerConfig struct {
	IP   string `xml:"ip,attr"`
	Port int    `xml:"port,attr"`
}

// DisplayConfig describes the remote LED matrix.
type DisplayConfig struct {
	Width          int  `xml:"width,attr"`
	Height         int  `xml:"height,attr"`
	OffsetX        int  `xml:"offsetX,attr"`
	OffsetY        int  `xml:"offsetY,attr"`
	Layer          int  `xml:"layer,attr"`
	FlipHorizontal flag `xml:"flipHorizontal,attr"`
	MirrorGlyph    flag `xml:"mirrorGlyph,attr"`

	ColorR   uint8 `xml:"colorR,attr"`
	ColorG   uint8 `xml:"colorG,attr"`
	ColorB   uint8 `xml:"colorB,attr"`
	BgColorR uint8 `xml:"bgColorR,attr"`
	BgColorG uint8 `xml:"bgColorG,attr"`
	BgColorB uint8 `xml:"bgColorB,attr"`
}

// TTSConfig carries the speech parameters bundled with a mapping.
type TTSConfig struct {
	Voice  string `xml:"voice,attr"`
	Rate   int    `xml:"rate,attr"`
	Pitch  int    `xml:"pitch,attr"`
	Volume int    `xml:"volume,attr"`
}

// AudioConfig selects the output device.
type AudioConfig struct {
	DeviceID   string `xml:"deviceId,attr"`
	DeviceName string `xml:"deviceName,attr"`
	BufferMs   int    `xml:"bufferMs,attr"`
}

// Global holds the per-installation settings of a mapping file.
type Global struct {
	Server  ServerConfig  `xml:"Server"`
	Display DisplayConfig `xml:"Display"`
	TTS     TTSConfig     `xml:"TTS"`
	Audio   AudioConfig   `xml:"Audio"`
}

// Mapping is a parsed note-to-syllable configuration.
type Mapping struct {
	XMLName   xml.Name      `xml:"Mapping"`
	Global    Global        `xml:"Global"`
	Syllables []Syllable    `xml:"Syllables>S"`
	Notes     []NoteMapping `xml:"Notes>Note"`

	noteToSyllable map[int]int
}

// flag is a boolean attribute accepting the 0/1 spellings older mapping
// files use alongside true/false.
type flag bool

// UnmarshalXMLAttr implements xml.UnmarshalerAttr.
func (f *flag) UnmarshalXMLAttr(attr xml.Attr) error {
	switch attr.Value {
	case "1", "true":
		*f = true
	case "0", "false":
		*f = false
	}
	return nil
}

// MarshalXMLAttr implements xml.MarshalerAttr.
func (f flag) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	v := "0"
	if f {
		v = "1"
	}
	return xml.Attr{Name: name, Value: v}, nil
}

// withDefaults returns a mapping pre-filled with the documented attribute
// defaults; unmarshalling over it leaves absent attributes at these
// values.
func withDefaults() Mapping {
	return Mapping{
		Global: Global{
			Server: ServerConfig{IP: "127.0.0.1", Port: 1337},
			Display: DisplayConfig{
				Width: 45, Height: 35, Layer: 1,
				MirrorGlyph: true,
				ColorR:      255, ColorG: 255, ColorB: 255,
			},
			TTS:   TTSConfig{Voice: "en", Rate: 120, Pitch: 50, Volume: 100},
			Audio: AudioConfig{BufferMs: 20},
		},
	}
}

// Parse reads a mapping from XML content. A mapping without syllables or
// without note bindings is rejected.
func Parse(content []byte) (*Mapping, error) {
	m := withDefaults()
	if err := xml.Unmarshal(content, &m); err != nil {
		return nil, errors.New(err).
			Component("mapping").
			Category(errors.CategoryFileParsing).
			Build()
	}

	if len(m.Syllables) == 0 {
		return nil, errors.Newf("no syllables found in configuration").
			Component("mapping").
			Category(errors.CategoryValidation).
			Build()
	}
	if len(m.Notes) == 0 {
		return nil, errors.Newf("no note mappings found in configuration").
			Component("mapping").
			Category(errors.CategoryValidation).
			Build()
	}

	m.buildIndex()
	return &m, nil
}

// Load reads a mapping from an XML file.
func Load(path string) (*Mapping, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("mapping").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return Parse(content)
}

func (m *Mapping) buildIndex() {
	m.noteToSyllable = make(map[int]int, len(m.Notes))
	for _, n := range m.Notes {
		if n.MIDINote >= 0 && n.SyllableID >= 0 {
			m.noteToSyllable[n.MIDINote] = n.SyllableID
		}
	}
}

// SyllableForNote returns the syllable text bound to a MIDI note. The
// second result is false when the note has no binding.
func (m *Mapping) SyllableForNote(midiNote int) (string, bool) {
	id, ok := m.noteToSyllable[midiNote]
	if !ok {
		return "", false
	}
	s := m.SyllableByID(id)
	if s == nil {
		return "", false
	}
	return s.Text, true
}

// SyllableByID returns the syllable with the given id, or nil.
func (m *Mapping) SyllableByID(id int) *Syllable {
	for i := range m.Syllables {
		if m.Syllables[i].ID == id {
			return &m.Syllables[i]
		}
	}
	return nil
}

// Default returns the built-in do-re-mi mapping on the C major white
// keys, used when no mapping file is configured.
func Default() *Mapping {
	m := withDefaults()
	m.Syllables = []Syllable{
		{ID: 0, Text: "do"},
		{ID: 1, Text: "re"},
		{ID: 2, Text: "mi"},
		{ID: 3, Text: "fa"},
		{ID: 4, Text: "sol"},
		{ID: 5, Text: "la"},
		{ID: 6, Text: "si"},
		{ID: 7, Text: "DO"},
	}
	m.Notes = []NoteMapping{
		{MIDINote: 60, SyllableID: 0},
		{MIDINote: 62, SyllableID: 1},
		{MIDINote: 64, SyllableID: 2},
		{MIDINote: 65, SyllableID: 3},
		{MIDINote: 67, SyllableID: 4},
		{MIDINote: 69, SyllableID: 5},
		{MIDINote: 71, SyllableID: 6},
		{MIDINote: 72, SyllableID: 7},
	}
	m.buildIndex()
	return &m
}
