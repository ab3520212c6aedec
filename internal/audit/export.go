package audit

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"ID", "Username", "Module", "Action", "Method", "URL", "IP", "Status", "Error", "Created At"}

// WriteCSV renders logs as CSV with a header row.
func WriteCSV(w io.Writer, logs []Log) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range logs {
		status := "failed"
		if l.Succeeded() {
			status = "success"
		}
		errMsg := ""
		if l.ErrorMessage != nil {
			errMsg = *l.ErrorMessage
		}
		record := []string{
			strconv.FormatInt(l.ID, 10),
			l.Username,
			l.Module,
			l.Action,
			l.Method,
			l.URL,
			l.IP,
			status,
			errMsg,
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
