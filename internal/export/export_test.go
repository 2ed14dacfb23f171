package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

func ts(h, m int) time.Time {
	return time.Date(2024, 5, 6, h, m, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

func sampleTimeline() *models.DailyTimeline {
	return &models.DailyTimeline{
		SubjectID: "w1",
		Date:      "2024-05-06",
		Intervals: []models.TimelineInterval{
			{Type: models.IntervalWork, Status: models.StatusCompleted, StartTime: ts(9, 0), EndTime: tp(ts(13, 0)), DurationMinutes: 240, LocationID: "depot"},
			{Type: models.IntervalTravel, Status: models.StatusCompleted, StartTime: ts(13, 0), EndTime: tp(ts(14, 0)), DurationMinutes: 60, DistanceKm: 12.346},
			{Type: models.IntervalWork, Status: models.StatusInProgress, StartTime: ts(14, 0)},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)

	assert.Equal(t, "timeline_w1_2024-05-06.xlsx", FormatXLSX.Filename(sampleTimeline()))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTimeline(), time.UTC))

	want := "Type,Start,End,Duration (min),Distance (km),Location\n" +
		"Work,2024-05-06 09:00,2024-05-06 13:00,240.0,,depot\n" +
		"Travel,2024-05-06 13:00,2024-05-06 14:00,60.0,12.35,\n" +
		"Work,2024-05-06 14:00,in progress,0.0,,\n"
	assert.Equal(t, want, buf.String())
}

func TestRowsUseLocation(t *testing.T) {
	rows := Rows(sampleTimeline(), time.FixedZone("UTC+2", 2*3600))
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-05-06 11:00", rows[0][1])
	assert.Len(t, rows[0], len(Columns))
}

func TestRowsUnterminated(t *testing.T) {
	tl := &models.DailyTimeline{Intervals: []models.TimelineInterval{
		{Type: models.IntervalWork, Status: models.StatusUnterminated, StartTime: ts(9, 0)},
	}}
	assert.Equal(t, "unterminated", Rows(tl, nil)[0][2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleTimeline(), time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "Work", rows[1][0])
	assert.Equal(t, "depot", rows[1][5])
	assert.Equal(t, "12.35", rows[2][4])
	assert.Equal(t, "in progress", rows[3][2])
}

func TestWriteEmptyTimeline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &models.DailyTimeline{}, time.UTC))
	assert.Equal(t, "Type,Start,End,Duration (min),Distance (km),Location\n", buf.String())
}
