package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `
<Mapping>
    <Global>
        <Server ip="192.168.1.50" port="1337"/>
        <Display width="45" height="35" offsetX="2" offsetY="3" layer="2"
                 flipHorizontal="1" mirrorGlyph="0"
                 colorR="255" colorG="255" colorB="0"/>
        <TTS voice="de" rate="140" pitch="60" volume="150"/>
        <Audio deviceName="USB Audio" bufferMs="30"/>
    </Global>
    <Syllables>
        <S id="0" text="do"/>
        <S id="1" text="re"/>
        <S id="2" text="mi"/>
    </Syllables>
    <Notes>
        <Note midi="60" syllable_id="0"/>
        <Note midi="62" syllable_id="1"/>
        <Note midi="64" syllable_id="2"/>
    </Notes>
</Mapping>`

func TestParseFullMapping(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(sampleXML))
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.50", m.Global.Server.IP)
	assert.Equal(t, 1337, m.Global.Server.Port)

	assert.Equal(t, 45, m.Global.Display.Width)
	assert.Equal(t, 35, m.Global.Display.Height)
	assert.Equal(t, 2, m.Global.Display.OffsetX)
	assert.Equal(t, 3, m.Global.Display.OffsetY)
	assert.Equal(t, 2, m.Global.Display.Layer)
	assert.True(t, bool(m.Global.Display.FlipHorizontal))
	assert.False(t, bool(m.Global.Display.MirrorGlyph))
	assert.Equal(t, uint8(0), m.Global.Display.ColorB)

	assert.Equal(t, "de", m.Global.TTS.Voice)
	assert.Equal(t, 140, m.Global.TTS.Rate)
	assert.Equal(t, 60, m.Global.TTS.Pitch)
	assert.Equal(t, 150, m.Global.TTS.Volume)

	assert.Equal(t, "USB Audio", m.Global.Audio.DeviceName)
	assert.Equal(t, 30, m.Global.Audio.BufferMs)

	require.Len(t, m.Syllables, 3)
	require.Len(t, m.Notes, 3)
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()

	minimal := `
<Mapping>
    <Syllables><S id="0" text="la"/></Syllables>
    <Notes><Note midi="69" syllable_id="0"/></Notes>
</Mapping>`

	m, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", m.Global.Server.IP)
	assert.Equal(t, 1337, m.Global.Server.Port)
	assert.Equal(t, 45, m.Global.Display.Width)
	assert.Equal(t, 35, m.Global.Display.Height)
	assert.Equal(t, 1, m.Global.Display.Layer)
	assert.False(t, bool(m.Global.Display.FlipHorizontal))
	assert.True(t, bool(m.Global.Display.MirrorGlyph))
	assert.Equal(t, uint8(255), m.Global.Display.ColorR)
	assert.Equal(t, "en", m.Global.TTS.Voice)
	assert.Equal(t, 120, m.Global.TTS.Rate)
	assert.Equal(t, 20, m.Global.Audio.BufferMs)
}

func TestParseRejectsIncompleteMappings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		xml  string
	}{
		{
			name: "no_syllables",
			xml:  `<Mapping><Notes><Note midi="60" syllable_id="0"/></Notes></Mapping>`,
		},
		{
			name: "no_notes",
			xml:  `<Mapping><Syllables><S id="0" text="do"/></Syllables></Mapping>`,
		},
		{
			name: "not_xml",
			xml:  `{"this": "is json"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.xml))
			assert.Error(t, err)
		})
	}
}

func TestSyllableForNote(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(sampleXML))
	require.NoError(t, err)

	text, ok := m.SyllableForNote(60)
	require.True(t, ok)
	assert.Equal(t, "do", text)

	text, ok = m.SyllableForNote(64)
	require.True(t, ok)
	assert.Equal(t, "mi", text)

	_, ok = m.SyllableForNote(61)
	assert.False(t, ok, "black keys are unmapped in this mapping")
}

func TestSyllableForNoteDanglingID(t *testing.T) {
	t.Parallel()

	broken := `
<Mapping>
    <Syllables><S id="0" text="do"/></Syllables>
    <Notes>
        <Note midi="60" syllable_id="0"/>
        <Note midi="62" syllable_id="99"/>
    </Notes>
</Mapping>`

	m, err := Parse([]byte(broken))
	require.NoError(t, err)

	_, ok := m.SyllableForNote(62)
	assert.False(t, ok, "a binding to a missing syllable resolves to nothing")
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapping.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleXML), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Syllables, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestDefaultMapping(t *testing.T) {
	t.Parallel()

	m := Default()
	require.Len(t, m.Syllables, 8)
	require.Len(t, m.Notes, 8)

	// The white keys of the C major scale from middle C up.
	expected := map[int]string{
		60: "do", 62: "re", 64: "mi", 65: "fa",
		67: "sol", 69: "la", 71: "si", 72: "DO",
	}
	for note, want := range expected {
		text, ok := m.SyllableForNote(note)
		require.Truef(t, ok, "note %d must be mapped", note)
		assert.Equal(t, want, text)
	}
}
