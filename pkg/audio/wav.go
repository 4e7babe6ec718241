package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// Data holds decoded audio as mono float64 PCM in [-1, 1]
type Data struct {
	PCM        []float64
	SampleRate int
	Channels   int // channel count of the source before downmix
	Duration   time.Duration
}

const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// ReadWAVFile decodes a RIFF/WAVE file from disk
func ReadWAVFile(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	data, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return data, nil
}

// DecodeWAV decodes a RIFF/WAVE stream. Supports 16-bit PCM and 32-bit
// IEEE float samples; multi-channel input is downmixed to mono by
// averaging across channels.
func DecodeWAV(r io.Reader) (*Data, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		audioFormat   uint16
		channels      uint16
		sampleRate    uint32
		bitsPerSample uint16
		haveFormat    bool
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("missing data chunk")
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too small: %d bytes", chunkSize)
			}
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtData); err != nil {
				return nil, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			audioFormat = binary.LittleEndian.Uint16(fmtData[0:2])
			channels = binary.LittleEndian.Uint16(fmtData[2:4])
			sampleRate = binary.LittleEndian.Uint32(fmtData[4:8])
			bitsPerSample = binary.LittleEndian.Uint16(fmtData[14:16])
			haveFormat = true

		case "data":
			if !haveFormat {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			raw := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, fmt.Errorf("failed to read data chunk: %w", err)
			}
			return decodeSamples(raw, audioFormat, channels, int(sampleRate), bitsPerSample)

		default:
			// Skip unknown chunks (LIST, fact, ...)
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return nil, fmt.Errorf("failed to skip %q chunk: %w", chunkID, err)
			}
		}

		// Chunks are word-aligned
		if chunkSize%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to skip chunk padding: %w", err)
			}
		}
	}
}

func decodeSamples(raw []byte, audioFormat, channels uint16, sampleRate int, bitsPerSample uint16) (*Data, error) {
	if channels == 0 {
		return nil, fmt.Errorf("invalid channel count 0")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	var samples []float64
	switch {
	case audioFormat == formatPCM && bitsPerSample == 16:
		n := len(raw) / 2
		samples = make([]float64, n)
		for i := range n {
			v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
			samples[i] = float64(v) / 32768.0
		}
	case audioFormat == formatIEEEFloat && bitsPerSample == 32:
		n := len(raw) / 4
		samples = make([]float64, n)
		for i := range n {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			samples[i] = float64(math.Float32frombits(bits))
		}
	default:
		return nil, fmt.Errorf("unsupported WAV encoding: format=%d bits=%d", audioFormat, bitsPerSample)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("empty data chunk")
	}

	pcm := downmix(samples, int(channels))
	return &Data{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   int(channels),
		Duration:   time.Duration(float64(len(pcm)) / float64(sampleRate) * float64(time.Second)),
	}, nil
}

// downmix averages interleaved channels into a mono signal
func downmix(samples []float64, channels int) []float64 {
	if channels == 1 {
		return samples
	}
	frames := len(samples) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			sum += samples[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// Resample converts pcm from one sample rate to another with linear
// interpolation. The voice features all live well below the Nyquist
// limit of the target rates in use, so no anti-aliasing filter is
// applied.
func Resample(pcm []float64, fromRate, toRate int) []float64 {
	if fromRate == toRate || len(pcm) == 0 {
		return pcm
	}

	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(pcm)) / ratio)
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := range outLen {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(pcm)-1 {
			out[i] = pcm[len(pcm)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = pcm[idx]*(1-frac) + pcm[idx+1]*frac
	}
	return out
}
