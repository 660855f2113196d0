package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Параметры заглушечного сигнала
const (
	SampleRate     = 44100
	ToneFrequency  = 440.0 // нота ля первой октавы
	ToneAmplitude  = 0.1   // доля от полной шкалы
	MaxToneLength  = 3.0   // секунд
	secondsPerRune = 0.1

	bitsPerSample = 16
	numChannels   = 1
)

var ErrInvalidWAV = errors.New("некорректный WAV файл")

// ToneDuration возвращает длительность заглушки для текста: 0.1 с на символ, не больше 3 с
func ToneDuration(text string) float64 {
	return math.Min(MaxToneLength, float64(len([]rune(text)))*secondsPerRune)
}

// GenerateTone создает mono 16-bit PCM WAV с синусом 440 Гц и линейным затуханием
func GenerateTone(duration float64) []byte {
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}
	samples := int(duration * SampleRate)

	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		t := float64(i) / SampleRate
		fade := math.Max(0, 1-t/duration)
		amplitude := math.Trunc(math.MaxInt16 * fade * ToneAmplitude)
		value := int16(amplitude * math.Sin(2*math.Pi*ToneFrequency*t))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(value))
	}

	return EncodeWAV(pcm, SampleRate, numChannels, bitsPerSample)
}

// EncodeWAV оборачивает PCM данные в RIFF/WAVE заголовок
func EncodeWAV(pcm []byte, sampleRate, channels, bits int) []byte {
	blockAlign := channels * bits / 8
	byteRate := sampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bits))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// WAVInfo основные параметры WAV файла
type WAVInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataSize      int
}

// Duration возвращает длительность в секундах
func (i WAVInfo) Duration() float64 {
	bytesPerSecond := i.SampleRate * i.Channels * i.BitsPerSample / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(i.DataSize) / float64(bytesPerSecond)
}

// ParseWAV читает заголовок WAV, пропуская посторонние чанки (LIST и т.п.)
func ParseWAV(data []byte) (WAVInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return WAVInfo{}, ErrInvalidWAV
	}

	var info WAVInfo
	var haveFmt bool
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return WAVInfo{}, fmt.Errorf("%w: короткий fmt чанк", ErrInvalidWAV)
			}
			info.Channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14:]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return WAVInfo{}, fmt.Errorf("%w: data до fmt", ErrInvalidWAV)
			}
			// потоковые WAV иногда пишут размер 0xFFFFFFFF
			if size > len(data)-body {
				size = len(data) - body
			}
			info.DataSize = size
			return info, nil
		}

		pos = body + size + size%2
	}

	return WAVInfo{}, fmt.Errorf("%w: нет data чанка", ErrInvalidWAV)
}
