package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/model"
)

// FFmpegDecoder transcodes any container ffmpeg understands into mono
// float32 PCM at SampleRate.
type FFmpegDecoder struct {
	ffmpegPath  string
	ffprobePath string
	tmpDir      string
	logger      *zap.Logger
}

// NewFFmpegDecoder creates a decoder. An empty ffprobePath disables probing.
func NewFFmpegDecoder(ffmpegPath, ffprobePath, tmpDir string, logger *zap.Logger) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegDecoder{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tmpDir:      tmpDir,
		logger:      logger,
	}
}

// Decode writes raw to a temp file (some containers need seekable input)
// and reads back f32le samples from ffmpeg's stdout.
func (d *FFmpegDecoder) Decode(ctx context.Context, raw []byte) (*Buffer, error) {
	f, err := os.CreateTemp(d.tmpDir, "echoscript-*.src")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(raw); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	if d.ffprobePath != "" {
		probe, err := d.Probe(ctx, f.Name())
		if err != nil {
			return nil, apperrors.Kind(apperrors.ErrDecode, err)
		}
		if !probe.HasAudio() {
			return nil, apperrors.Kind(apperrors.ErrDecode, apperrors.New("no audio stream found"))
		}
		d.logger.Debug("probed source audio",
			zap.String("format", probe.Format.FormatName),
			zap.Float64("duration", probe.DurationSeconds()))
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-i", f.Name(),
		"-vn", "-ac", "1", "-ar", strconv.Itoa(SampleRate),
		"-f", "f32le", "-acodec", "pcm_f32le",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Kind(apperrors.ErrDecode,
			fmt.Errorf("FFmpeg error: %v, stderr: %s", err, stderr.String()))
	}

	return decodeF32LE(stdout.Bytes()), nil
}

// Probe runs ffprobe against a file
func (d *FFmpegDecoder) Probe(ctx context.Context, path string) (*model.FFProbeOutput, error) {
	cmd := exec.CommandContext(ctx, d.ffprobePath,
		"-v", "quiet", "-print_format", "json", "-show_streams", "-show_format", path)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe error: %w", err)
	}

	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(output, &probeOutput); err != nil {
		return nil, fmt.Errorf("ffprobe output invalid: %w", err)
	}
	return &probeOutput, nil
}

func decodeF32LE(raw []byte) *Buffer {
	n := len(raw) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return &Buffer{Samples: samples, SampleRate: SampleRate}
}
