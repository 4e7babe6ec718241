package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeWAV16 builds a minimal 16-bit PCM RIFF/WAVE stream for tests
func encodeWAV16(samples []float64, sampleRate, channels int) []byte {
	var pcm bytes.Buffer
	for _, s := range samples {
		v := int16(math.Round(s * 32767))
		binary.Write(&pcm, binary.LittleEndian, v)
	}

	dataLen := pcm.Len()
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm.Bytes())

	return buf.Bytes()
}

func TestDecodeWAVMono(t *testing.T) {
	samples := []float64{0, 0.5, -0.5, 0.25}
	raw := encodeWAV16(samples, 22050, 1)

	data, err := DecodeWAV(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, 22050, data.SampleRate)
	assert.Equal(t, 1, data.Channels)
	require.Len(t, data.PCM, len(samples))
	for i, want := range samples {
		assert.InDelta(t, want, data.PCM[i], 1e-3, "sample %d", i)
	}
}

func TestDecodeWAVStereoDownmix(t *testing.T) {
	// Interleaved stereo: L=0.5, R=-0.5 averages to silence
	samples := []float64{0.5, -0.5, 0.5, -0.5, 0.5, -0.5}
	raw := encodeWAV16(samples, 16000, 2)

	data, err := DecodeWAV(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, 2, data.Channels)
	require.Len(t, data.PCM, 3)
	for i, v := range data.PCM {
		assert.InDelta(t, 0.0, v, 1e-3, "frame %d", i)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("definitely not a wave file")))
	assert.Error(t, err)
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	samples := []float64{0.1, 0.2, 0.3}
	raw := encodeWAV16(samples, 8000, 1)

	// Splice a LIST chunk between fmt and data
	var list bytes.Buffer
	list.WriteString("LIST")
	binary.Write(&list, binary.LittleEndian, uint32(4))
	list.WriteString("INFO")

	spliced := append([]byte{}, raw[:36]...)
	spliced = append(spliced, list.Bytes()...)
	spliced = append(spliced, raw[36:]...)
	binary.LittleEndian.PutUint32(spliced[4:8], uint32(len(spliced)-8))

	data, err := DecodeWAV(bytes.NewReader(spliced))
	require.NoError(t, err)
	assert.Len(t, data.PCM, 3)
}

func TestReadWAVFile(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * float64(i) / 20)
	}
	raw := encodeWAV16(samples, 22050, 1)

	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	data, err := ReadWAVFile(path)
	require.NoError(t, err)
	assert.Len(t, data.PCM, 100)
	assert.Equal(t, 22050, data.SampleRate)
}

func TestResample(t *testing.T) {
	pcm := make([]float64, 44100)
	for i := range pcm {
		pcm[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
	}

	out := Resample(pcm, 44100, 22050)
	assert.InDelta(t, 22050, len(out), 2)

	// Same rate is a no-op
	same := Resample(pcm, 44100, 44100)
	assert.Len(t, same, len(pcm))
}
