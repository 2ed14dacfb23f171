package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// WriteCSV writes the header row followed by one row per interval
func WriteCSV(w io.Writer, tl *models.DailyTimeline, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(tl, loc)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
