package converter

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

type ProgressManager struct {
	container *mpb.Progress
	enabled   bool
	mu        sync.Mutex
	stop      sync.Once
}

// ProgressBar tracks the chunks of one job. A disabled bar ignores every call.
type ProgressBar struct {
	bar     *mpb.Bar
	enabled bool
}

func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	// mpb stays silent on non-terminal writers unless refresh is forced
	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithAutoRefresh(),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	return &ProgressManager{
		container: container,
		enabled:   true,
	}
}

func (pm *ProgressManager) CreateBar(total int, description string) *ProgressBar {
	if pm == nil || !pm.enabled || pm.container == nil {
		return &ProgressBar{enabled: false}
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	bar := pm.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d chunks)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(
				decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncWidth), " ✓ ",
			),
		),
	)

	return &ProgressBar{
		bar:     bar,
		enabled: true,
	}
}

// Update moves the bar to done of total chunks
func (pb *ProgressBar) Update(done, total int) {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetTotal(int64(total), false)
		pb.bar.SetCurrent(int64(done))
	}
}

// Finish completes the bar on success and aborts it, leaving it visible, on failure
func (pb *ProgressBar) Finish(ok bool) {
	if !pb.enabled || pb.bar == nil {
		return
	}
	if ok {
		pb.bar.SetTotal(pb.bar.Current(), true)
		return
	}
	pb.bar.Abort(false)
}

// Wait renders every bar to completion. The container cannot take new bars afterwards.
func (pm *ProgressManager) Wait() {
	if pm != nil && pm.enabled && pm.container != nil {
		pm.stop.Do(pm.container.Wait)
	}
}

func (pm *ProgressManager) Shutdown() {
	if pm != nil && pm.enabled && pm.container != nil {
		pm.stop.Do(pm.container.Shutdown)
	}
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}

	return IsTTY(os.Stderr)
}

func FormatProgressDescription(fileName string, jobID string) string {
	if len(jobID) > 8 {
		jobID = jobID[:8]
	}
	if jobID != "" {
		return fmt.Sprintf("%s (%s)", fileName, jobID)
	}
	return fileName
}
