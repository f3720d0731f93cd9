// Package export renders entries as CSV and delivers the file to a sink.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
)

const (
	Filename    = "user_entries.csv"
	ContentType = "text/csv"
)

var header = []string{"app_name", "username", "timestamp", "readable_time"}

// WriteCSV writes a header line and one line per row, in the given order.
func WriteCSV(w io.Writer, rows []entries.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.AppName, r.Username, r.Timestamp, r.ReadableTime}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Render is WriteCSV into memory.
func Render(rows []entries.Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
