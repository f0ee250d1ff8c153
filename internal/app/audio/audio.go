package audio

import (
	"context"

	"go.uber.org/zap"

	apperrors "echoscript/internal/app/errors"
)

const (
	// SampleRate is the rate every buffer is normalized to
	SampleRate = 16000
	// DefaultChunkSeconds is the duration of one inference chunk (10 minutes)
	DefaultChunkSeconds = 600
	// WAVMimeType is the MIME type of EncodeWAV payloads
	WAVMimeType = "audio/wav"
)

// Buffer holds mono float32 PCM samples in [-1, 1]
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Len returns the number of samples
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Duration returns the buffer length in seconds
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Decoder turns an arbitrary audio/video container into a normalized buffer
type Decoder interface {
	Decode(ctx context.Context, raw []byte) (*Buffer, error)
}

// Preparer normalizes raw uploads. Canonical 16 kHz WAV is decoded in
// process; everything else goes through the fallback decoder (ffmpeg).
type Preparer struct {
	fallback Decoder
	logger   *zap.Logger
}

// NewPreparer creates a preparer. fallback may be nil, in which case only
// WAV input at the target sample rate is accepted.
func NewPreparer(fallback Decoder, logger *zap.Logger) *Preparer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{fallback: fallback, logger: logger}
}

// Normalize decodes raw bytes into mono PCM at SampleRate
func (p *Preparer) Normalize(ctx context.Context, raw []byte) (*Buffer, error) {
	if len(raw) == 0 {
		return nil, apperrors.Kind(apperrors.ErrDecode, apperrors.New("empty audio payload"))
	}

	buf, err := DecodeWAV(raw)
	if err == nil && buf.SampleRate == SampleRate {
		p.logger.Debug("decoded wav in process",
			zap.Int("samples", buf.Len()),
			zap.Float64("duration", buf.Duration()))
		return buf, nil
	}

	if p.fallback == nil {
		if err != nil {
			return nil, apperrors.Kind(apperrors.ErrDecode, err)
		}
		return nil, apperrors.Kind(apperrors.ErrDecode,
			apperrors.Newf("unsupported sample rate %d without a transcoder", buf.SampleRate))
	}

	buf, err = p.fallback.Decode(ctx, raw)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrDecode) {
			return nil, err
		}
		return nil, apperrors.Kind(apperrors.ErrDecode, err)
	}
	p.logger.Debug("decoded audio with transcoder",
		zap.Int("samples", buf.Len()),
		zap.Float64("duration", buf.Duration()))
	return buf, nil
}

// Split partitions buf into contiguous windows of chunkSeconds. The final
// window may be shorter; an empty buffer yields no chunks. A non-positive
// chunkSeconds yields the whole buffer as one chunk.
func Split(buf *Buffer, chunkSeconds int) []*Buffer {
	total := buf.Len()
	if total == 0 {
		return nil
	}

	perChunk := chunkSeconds * buf.SampleRate
	if perChunk <= 0 {
		perChunk = total
	}

	chunks := make([]*Buffer, 0, (total+perChunk-1)/perChunk)
	for start := 0; start < total; start += perChunk {
		end := min(start+perChunk, total)
		chunks = append(chunks, &Buffer{
			Samples:    buf.Samples[start:end:end],
			SampleRate: buf.SampleRate,
		})
	}
	return chunks
}

// OffsetSeconds returns the whole-recording offset of chunk index
func OffsetSeconds(index, chunkSeconds int) int {
	return index * chunkSeconds
}
