// Package export renders daily timelines as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// Format is an export file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Columns is the fixed column order of every export
var Columns = []string{"Type", "Start", "End", "Duration (min)", "Distance (km)", "Location"}

const timeLayout = "2006-01-02 15:04"

// ParseFormat maps the query value to a format; empty means CSV
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds the attachment name for a subject-day
func (f Format) Filename(tl *models.DailyTimeline) string {
	return fmt.Sprintf("timeline_%s_%s.%s", tl.SubjectID, tl.Date, f)
}

// Write renders the timeline in the given format
func Write(w io.Writer, format Format, tl *models.DailyTimeline, loc *time.Location) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, tl, loc)
	default:
		return WriteCSV(w, tl, loc)
	}
}

// Rows converts intervals to string cells in Columns order. Times are rendered in loc.
func Rows(tl *models.DailyTimeline, loc *time.Location) [][]string {
	if loc == nil {
		loc = time.UTC
	}

	rows := make([][]string, 0, len(tl.Intervals))
	for _, iv := range tl.Intervals {
		row := []string{
			typeLabel(iv.Type),
			iv.StartTime.In(loc).Format(timeLayout),
			endLabel(iv, loc),
			strconv.FormatFloat(iv.DurationMinutes, 'f', 1, 64),
			"",
			"",
		}
		switch iv.Type {
		case models.IntervalTravel:
			row[4] = strconv.FormatFloat(iv.DistanceKm, 'f', 2, 64)
		case models.IntervalWork:
			row[5] = iv.LocationID
		}
		rows = append(rows, row)
	}
	return rows
}

func typeLabel(t models.IntervalType) string {
	if t == models.IntervalTravel {
		return "Travel"
	}
	return "Work"
}

func endLabel(iv models.TimelineInterval, loc *time.Location) string {
	switch {
	case iv.EndTime != nil:
		return iv.EndTime.In(loc).Format(timeLayout)
	case iv.Status == models.StatusInProgress:
		return "in progress"
	default:
		return "unterminated"
	}
}
