package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "echoscript/internal/app/errors"
)

type mockDecoder struct {
	mock.Mock
}

func (m *mockDecoder) Decode(ctx context.Context, raw []byte) (*Buffer, error) {
	args := m.Called(ctx, raw)
	buf, _ := args.Get(0).(*Buffer)
	return buf, args.Error(1)
}

func ramp(n, rate int) *Buffer {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(math.Sin(float64(i) / 7))
	}
	return &Buffer{Samples: s, SampleRate: rate}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name         string
		samples      int
		rate         int
		chunkSeconds int
		wantChunks   int
	}{
		{name: "empty", samples: 0, rate: 10, chunkSeconds: 3, wantChunks: 0},
		{name: "shorter than one chunk", samples: 25, rate: 10, chunkSeconds: 3, wantChunks: 1},
		{name: "exact multiple", samples: 90, rate: 10, chunkSeconds: 3, wantChunks: 3},
		{name: "remainder", samples: 95, rate: 10, chunkSeconds: 3, wantChunks: 4},
		{name: "single sample", samples: 1, rate: 16000, chunkSeconds: 600, wantChunks: 1},
		{name: "non-positive chunk", samples: 40, rate: 10, chunkSeconds: 0, wantChunks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := ramp(tt.samples, tt.rate)
			chunks := Split(buf, tt.chunkSeconds)
			require.Len(t, chunks, tt.wantChunks)

			if tt.chunkSeconds > 0 {
				expected := int(math.Ceil(buf.Duration() / float64(tt.chunkSeconds)))
				assert.Equal(t, expected, len(chunks))
			}

			var joined []float32
			for i, c := range chunks {
				assert.Equal(t, tt.rate, c.SampleRate)
				if i < len(chunks)-1 {
					assert.Equal(t, tt.chunkSeconds*tt.rate, c.Len(), "chunk %d must be full length", i)
				} else {
					assert.LessOrEqual(t, c.Len(), max(tt.chunkSeconds*tt.rate, tt.samples))
				}
				joined = append(joined, c.Samples...)
			}
			if tt.samples == 0 {
				assert.Empty(t, joined)
			} else {
				assert.Equal(t, buf.Samples, joined)
			}
		})
	}
}

func TestSplit_ChunksDoNotAlias(t *testing.T) {
	buf := ramp(30, 10)
	chunks := Split(buf, 1)
	require.Len(t, chunks, 3)

	// appending to one chunk must not overwrite the next
	before := chunks[1].Samples[0]
	_ = append(chunks[0].Samples, 42)
	assert.Equal(t, before, chunks[1].Samples[0])
}

func TestOffsetSeconds(t *testing.T) {
	assert.Equal(t, 0, OffsetSeconds(0, 600))
	assert.Equal(t, 1200, OffsetSeconds(2, 600))
}

func TestEncodeWAV_Header(t *testing.T) {
	buf := &Buffer{Samples: []float32{0, 0.5, -0.5}, SampleRate: SampleRate}
	out := EncodeWAV(buf)

	require.Len(t, out, 44+6)
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, uint32(36+6), binary.LittleEndian.Uint32(out[4:]))
	assert.Equal(t, "WAVE", string(out[8:12]))
	assert.Equal(t, "fmt ", string(out[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[20:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[22:]))
	assert.Equal(t, uint32(SampleRate), binary.LittleEndian.Uint32(out[24:]))
	assert.Equal(t, uint32(SampleRate*2), binary.LittleEndian.Uint32(out[28:]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(out[34:]))
	assert.Equal(t, "data", string(out[36:40]))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(out[40:]))
}

func TestEncodeWAV_Clamps(t *testing.T) {
	buf := &Buffer{Samples: []float32{2.5, -3, 1, -1}, SampleRate: SampleRate}
	out := EncodeWAV(buf)

	got := []int16{
		int16(binary.LittleEndian.Uint16(out[44:])),
		int16(binary.LittleEndian.Uint16(out[46:])),
		int16(binary.LittleEndian.Uint16(out[48:])),
		int16(binary.LittleEndian.Uint16(out[50:])),
	}
	assert.Equal(t, []int16{0x7FFF, -0x8000, 0x7FFF, -0x8000}, got)
}

func TestWAVRoundTrip(t *testing.T) {
	buf := ramp(5000, SampleRate)
	buf.Samples[0] = 1
	buf.Samples[1] = -1
	buf.Samples[2] = 0

	decoded, err := DecodeWAV(EncodeWAV(buf))
	require.NoError(t, err)
	require.Equal(t, buf.Len(), decoded.Len())
	assert.Equal(t, SampleRate, decoded.SampleRate)

	// one 16-bit step plus float32 rounding slack
	step := 1.0/0x7FFF + 1e-6
	for i := range buf.Samples {
		diff := math.Abs(float64(buf.Samples[i] - decoded.Samples[i]))
		if diff > step {
			t.Fatalf("sample %d differs by %g (> one quantization step)", i, diff)
		}
	}
}

func stereoWAV(left, right []int16, rate int) []byte {
	dataSize := len(left) * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 2)
	binary.LittleEndian.PutUint32(out[24:], uint32(rate))
	binary.LittleEndian.PutUint32(out[28:], uint32(rate*4))
	binary.LittleEndian.PutUint16(out[32:], 4)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i := range left {
		binary.LittleEndian.PutUint16(out[44+i*4:], uint16(left[i]))
		binary.LittleEndian.PutUint16(out[46+i*4:], uint16(right[i]))
	}
	return out
}

func TestDecodeWAV_DownmixesStereo(t *testing.T) {
	raw := stereoWAV([]int16{0x7FFF, 0, -0x8000}, []int16{0x7FFF, 0x7FFF, 0}, 8000)

	buf, err := DecodeWAV(raw)
	require.NoError(t, err)
	assert.Equal(t, 8000, buf.SampleRate)
	require.Equal(t, 3, buf.Len())
	assert.InDelta(t, 1.0, buf.Samples[0], 1e-6)
	assert.InDelta(t, 0.5, buf.Samples[1], 1e-6)
	assert.InDelta(t, -0.5, buf.Samples[2], 1e-6)
}

func TestDecodeWAV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not riff", data: []byte("ID3\x03\x00\x00\x00\x00\x00\x00\x00\x00")},
		{name: "missing data chunk", data: EncodeWAV(&Buffer{SampleRate: SampleRate})[:36]},
		{name: "partial frame", data: append(EncodeWAV(&Buffer{SampleRate: SampleRate}), 0x01)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeWAV(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrDecode))
		})
	}
}

func TestDecodeWAV_UnpatchedDataSize(t *testing.T) {
	data := EncodeWAV(ramp(2*SampleRate, SampleRate))
	binary.LittleEndian.PutUint32(data[40:], 0)

	buf, err := DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, 2*SampleRate, buf.Len())

	buf, err = NewPreparer(nil, nil).Normalize(context.Background(), data)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, buf.Duration(), 1e-9)
}

func TestPreparer_Normalize(t *testing.T) {
	ctx := context.Background()

	t.Run("native wav skips transcoder", func(t *testing.T) {
		dec := new(mockDecoder)
		p := NewPreparer(dec, nil)

		buf, err := p.Normalize(ctx, EncodeWAV(ramp(100, SampleRate)))
		require.NoError(t, err)
		assert.Equal(t, 100, buf.Len())
		dec.AssertNotCalled(t, "Decode", mock.Anything, mock.Anything)
	})

	t.Run("other rate goes through transcoder", func(t *testing.T) {
		dec := new(mockDecoder)
		raw := stereoWAV([]int16{1, 2}, []int16{3, 4}, 44100)
		dec.On("Decode", ctx, raw).Return(ramp(50, SampleRate), nil).Once()

		p := NewPreparer(dec, nil)
		buf, err := p.Normalize(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, 50, buf.Len())
		dec.AssertExpectations(t)
	})

	t.Run("transcoder failure is a decode error", func(t *testing.T) {
		dec := new(mockDecoder)
		dec.On("Decode", ctx, mock.Anything).Return(nil, errors.New("exit status 1"))

		p := NewPreparer(dec, nil)
		_, err := p.Normalize(ctx, []byte("garbage"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrDecode))
	})

	t.Run("no transcoder and foreign container", func(t *testing.T) {
		p := NewPreparer(nil, nil)
		_, err := p.Normalize(ctx, []byte("fLaC...."))
		assert.True(t, errors.Is(err, apperrors.ErrDecode))
	})

	t.Run("empty payload", func(t *testing.T) {
		p := NewPreparer(nil, nil)
		_, err := p.Normalize(ctx, nil)
		assert.True(t, errors.Is(err, apperrors.ErrDecode))
	})
}

func TestDecodeF32LE(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw, math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(-0.75))

	buf := decodeF32LE(raw)
	assert.Equal(t, []float32{0.25, -0.75}, buf.Samples)
	assert.Equal(t, SampleRate, buf.SampleRate)
}
