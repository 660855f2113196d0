package audio

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// Duration определяет длительность аудио по содержимому: WAV по заголовку, остальное как MP3
func Duration(data []byte) (float64, error) {
	if len(data) >= 12 && string(data[0:4]) == "RIFF" {
		info, err := ParseWAV(data)
		if err != nil {
			return 0, err
		}
		return info.Duration(), nil
	}
	return MP3Duration(data)
}

// MP3Duration декодирует MP3 и считает длительность.
// go-mp3 всегда отдает 16-bit stereo, поэтому на сэмпл приходится 4 байта
func MP3Duration(data []byte) (float64, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования mp3: %w", err)
	}
	if dec.SampleRate() == 0 {
		return 0, fmt.Errorf("ошибка декодирования mp3: нулевая частота")
	}
	return float64(dec.Length()) / float64(dec.SampleRate()*4), nil
}

// Extension подбирает расширение файла по сигнатуре данных
func Extension(data []byte) string {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return ".wav"
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return ".mp3"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return ".mp3"
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return ".ogg"
	default:
		return ".wav"
	}
}

// IsAudioFile проверяет, относится ли файл к сохраняемым форматам
func IsAudioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".mp3", ".ogg":
		return true
	}
	return false
}
