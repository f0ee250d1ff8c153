// Package export renders a job result as a downloadable document.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/tealeg/xlsx"

	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/model"
)

// Format selects the export document
type Format string

const (
	// FormatFull is the complete result, verbatim text included
	FormatFull Format = "full"
	// FormatClean omits original_transcript from every segment
	FormatClean Format = "clean"
	// FormatXLSX is a spreadsheet with one row per segment
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats
var Formats = []Format{FormatFull, FormatClean, FormatXLSX}

// ParseFormat accepts a format name, case-insensitively. Empty means full.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatFull, nil
	}
	if f, ok := lo.Find(Formats, func(f Format) bool { return string(f) == s }); ok {
		return f, nil
	}
	return "", apperrors.InvalidFormat("export format", "one of full, clean, xlsx")
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// FileName returns the download name for an export made on day
func (f Format) FileName(day time.Time) string {
	date := day.Format("2006-01-02")
	switch f {
	case FormatClean:
		return fmt.Sprintf("transcription-corrected-%s.json", date)
	case FormatXLSX:
		return fmt.Sprintf("transcription-%s.xlsx", date)
	default:
		return fmt.Sprintf("transcription-full-%s.json", date)
	}
}

// Write renders result in format f to w
func Write(w io.Writer, result *model.TranscriptionResponse, f Format) error {
	if result == nil {
		return apperrors.New("job has no result to export")
	}

	switch f {
	case FormatFull:
		return writeJSON(w, result)
	case FormatClean:
		return writeJSON(w, Clean(result))
	case FormatXLSX:
		return ToExcel(result, w)
	default:
		return apperrors.InvalidFormat("export format", "one of full, clean, xlsx")
	}
}

// Clean drops the verbatim transcript from every segment
func Clean(result *model.TranscriptionResponse) model.CleanTranscription {
	return model.CleanTranscription{
		Summary: result.Summary,
		Segments: lo.Map(result.Segments, func(s model.TranscriptionSegment, _ int) model.CleanSegment {
			return model.CleanSegment{
				Speaker:            s.Speaker,
				Timestamp:          s.Timestamp,
				SemanticCorrection: s.SemanticCorrection,
				Emotion:            s.Emotion,
				Language:           s.Language,
			}
		}),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ToExcel writes a workbook with a Segments sheet and a Summary sheet
func ToExcel(result *model.TranscriptionResponse, w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Segments")
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "Timestamp"
	headerRow.AddCell().Value = "Speaker"
	headerRow.AddCell().Value = "Emotion"
	headerRow.AddCell().Value = "Original Transcript"
	headerRow.AddCell().Value = "Semantic Correction"

	for _, s := range result.Segments {
		row := sheet.AddRow()
		row.AddCell().Value = s.Timestamp
		row.AddCell().Value = s.Speaker
		row.AddCell().Value = string(s.Emotion)
		row.AddCell().Value = s.OriginalTranscript
		row.AddCell().Value = s.SemanticCorrection
	}

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	summary.AddRow().AddCell().Value = result.Summary

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
