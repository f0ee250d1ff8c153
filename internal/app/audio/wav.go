package audio

import (
	"encoding/binary"
	"math"

	apperrors "echoscript/internal/app/errors"
)

const (
	wavHeaderSize   = 44
	wavFormatPCM    = 1
	wavFormatFloat  = 3
	wavBitsPerInt16 = 16
)

// EncodeWAV serializes a mono buffer as a canonical 44-byte-header WAV with
// little-endian 16-bit PCM. Samples are clipped to [-1, 1] before quantizing.
func EncodeWAV(buf *Buffer) []byte {
	n := buf.Len()
	dataSize := n * 2
	out := make([]byte, wavHeaderSize+dataSize)

	rate := buf.SampleRate
	if rate == 0 {
		rate = SampleRate
	}

	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")

	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], wavFormatPCM)
	binary.LittleEndian.PutUint16(out[22:], 1)
	binary.LittleEndian.PutUint32(out[24:], uint32(rate))
	binary.LittleEndian.PutUint32(out[28:], uint32(rate*2))
	binary.LittleEndian.PutUint16(out[32:], 2)
	binary.LittleEndian.PutUint16(out[34:], wavBitsPerInt16)

	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))

	off := wavHeaderSize
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(out[off:], uint16(quantize(buf.Samples[i])))
		off += 2
	}
	return out
}

func quantize(s float32) int16 {
	v := math.Max(-1, math.Min(1, float64(s)))
	if v < 0 {
		return int16(v * 0x8000)
	}
	return int16(v * 0x7FFF)
}

func dequantize(v int16) float32 {
	if v < 0 {
		return float32(v) / 0x8000
	}
	return float32(v) / 0x7FFF
}

// DecodeWAV parses a RIFF/WAVE payload holding 16-bit PCM or 32-bit float
// samples. Multi-channel audio is downmixed to mono by averaging. The sample
// rate is returned as found; no resampling is done here.
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, apperrors.Kind(apperrors.ErrDecode, apperrors.New("not a RIFF/WAVE payload"))
	}

	var (
		format   uint16
		channels int
		rate     int
		bits     int
		pcm      []byte
		haveFmt  bool
	)

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4:]))
		body := off + 8
		end := body + size
		if end > len(data) || size < 0 {
			// truncated data chunks are tolerated, the rest is not
			if id != "data" {
				return nil, apperrors.Kind(apperrors.ErrDecode, apperrors.Newf("truncated %q chunk", id))
			}
			end = len(data)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, apperrors.Kind(apperrors.ErrDecode, apperrors.New("short fmt chunk"))
			}
			format = binary.LittleEndian.Uint16(data[body:])
			channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			rate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bits = int(binary.LittleEndian.Uint16(data[body+14:]))
			haveFmt = true
		case "data":
			// streaming writers leave a 0 placeholder size and never patch it
			if size == 0 {
				end = len(data)
			}
			pcm = data[body:end]
		}

		// chunks are word aligned
		off = end + (size & 1)
		if pcm != nil && haveFmt {
			break
		}
	}

	if !haveFmt || pcm == nil {
		return nil, apperrors.Kind(apperrors.ErrDecode, apperrors.New("missing fmt or data chunk"))
	}
	if channels <= 0 || rate <= 0 {
		return nil, apperrors.Kind(apperrors.ErrDecode, apperrors.New("invalid channel count or sample rate"))
	}

	var frameSamples func(frame []byte, ch int) float32
	switch {
	case format == wavFormatPCM && bits == 16:
		frameSamples = func(frame []byte, ch int) float32 {
			return dequantize(int16(binary.LittleEndian.Uint16(frame[ch*2:])))
		}
	case format == wavFormatFloat && bits == 32:
		frameSamples = func(frame []byte, ch int) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(frame[ch*4:]))
		}
	default:
		return nil, apperrors.Kind(apperrors.ErrDecode,
			apperrors.Newf("unsupported wav encoding format=%d bits=%d", format, bits))
	}

	frameSize := channels * bits / 8
	frames := len(pcm) / frameSize
	if frames == 0 && len(pcm) > 0 {
		return nil, apperrors.Kind(apperrors.ErrDecode, apperrors.Newf("data chunk of %d bytes holds no whole frame", len(pcm)))
	}
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		frame := pcm[i*frameSize : (i+1)*frameSize]
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += frameSamples(frame, ch)
		}
		samples[i] = sum / float32(channels)
	}

	return &Buffer{Samples: samples, SampleRate: rate}, nil
}
