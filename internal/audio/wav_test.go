package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneDuration(t *testing.T) {
	assert.InDelta(t, 0.5, ToneDuration("hello"), 1e-9)
	assert.Equal(t, MaxToneLength, ToneDuration("a very long sentence that easily exceeds thirty characters"))
	assert.Equal(t, 0.0, ToneDuration(""))
	// считаем символы, а не байты
	assert.InDelta(t, 0.2, ToneDuration("ёж"), 1e-9)
}

func TestGenerateToneHeader(t *testing.T) {
	data := GenerateTone(1.0)

	info, err := ParseWAV(data)
	require.NoError(t, err)

	assert.Equal(t, SampleRate, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitsPerSample)
	assert.Equal(t, SampleRate*2, info.DataSize)
	assert.InDelta(t, 1.0, info.Duration(), 1e-9)
	assert.Len(t, data, 44+SampleRate*2)
}

func TestGenerateToneAmplitudeAndFade(t *testing.T) {
	data := GenerateTone(1.0)
	pcm := data[44:]

	sample := func(i int) int16 {
		return int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	limit := int16(math.Trunc(32767 * ToneAmplitude))
	var peakStart, peakEnd int16
	for i := 0; i < SampleRate; i++ {
		v := sample(i)
		if v < 0 {
			v = -v
		}
		assert.LessOrEqual(t, v, limit)
		if i < SampleRate/10 && v > peakStart {
			peakStart = v
		}
		if i > SampleRate*9/10 && v > peakEnd {
			peakEnd = v
		}
	}

	assert.Equal(t, int16(0), sample(0))
	assert.Greater(t, peakStart, peakEnd, "сигнал должен затухать")
}

func TestGenerateToneZeroDuration(t *testing.T) {
	data := GenerateTone(0)

	info, err := ParseWAV(data)
	require.NoError(t, err)
	assert.Equal(t, 0, info.DataSize)
}

func TestParseWAVSkipsExtraChunks(t *testing.T) {
	wav := GenerateTone(0.5)

	// вставляем LIST чанк нечетной длины между fmt и data
	list := append([]byte("LIST"), 3, 0, 0, 0, 'a', 'b', 'c', 0)
	patched := append([]byte{}, wav[:36]...)
	patched = append(patched, list...)
	patched = append(patched, wav[36:]...)

	info, err := ParseWAV(patched)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, info.Duration(), 1e-9)
}

func TestParseWAVInvalid(t *testing.T) {
	_, err := ParseWAV([]byte("not a wav"))
	assert.ErrorIs(t, err, ErrInvalidWAV)

	_, err = ParseWAV([]byte("RIFF\x00\x00\x00\x00WAVE"))
	assert.ErrorIs(t, err, ErrInvalidWAV)
}

func TestDurationDetectsFormat(t *testing.T) {
	d, err := Duration(GenerateTone(2.0))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-9)

	_, err = Duration([]byte("definitely not audio"))
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".wav", Extension(GenerateTone(0.1)))
	assert.Equal(t, ".mp3", Extension([]byte("ID3\x04\x00")))
	assert.Equal(t, ".mp3", Extension([]byte{0xFF, 0xFB, 0x90}))
	assert.Equal(t, ".ogg", Extension([]byte("OggS\x00")))
	assert.Equal(t, ".wav", Extension(nil))
}

func TestIsAudioFile(t *testing.T) {
	assert.True(t, IsAudioFile("hero_happy_abc.wav"))
	assert.True(t, IsAudioFile("x.MP3"))
	assert.False(t, IsAudioFile("notes.txt"))
	assert.True(t, IsAudioFile("voice.ogg"))
	assert.False(t, IsAudioFile("audio"))
}
