package output

import (
	"fmt"
	"io"

	"github.com/marmos91/pdmvault/pkg/vault"
)

// RecordTable renders file records as a listing table.
type RecordTable struct {
	records []vault.FileRecord
}

// NewRecordTable creates a table over the given records.
func NewRecordTable(records []vault.FileRecord) *RecordTable {
	return &RecordTable{records: records}
}

// Headers implements TableRenderer.
func (t *RecordTable) Headers() []string {
	return []string{"File", "Status", "Size", "Locked By", "Description"}
}

// Rows implements TableRenderer.
func (t *RecordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.records))
	for _, record := range t.records {
		lockedBy := record.LockedBy
		if lockedBy == "" {
			lockedBy = "-"
		}
		rows = append(rows, []string{
			record.Filename,
			string(record.Status),
			FormatSize(record.SizeBytes),
			lockedBy,
			record.Description,
		})
	}
	return rows
}

// PrintRecords writes a file listing table to the writer.
func PrintRecords(w io.Writer, records []vault.FileRecord) error {
	return PrintTable(w, NewRecordTable(records))
}

// PrintRecord writes a single record as a key-value table.
func PrintRecord(w io.Writer, record *vault.FileRecord) error {
	pairs := [][2]string{
		{"File", record.Filename},
		{"Status", string(record.Status)},
		{"Size", FormatSize(record.SizeBytes)},
		{"Description", record.Description},
	}
	if record.LockedBy != "" {
		pairs = append(pairs, [2]string{"Locked By", record.LockedBy})
	}
	return SimpleTable(w, pairs)
}

// FormatSize renders a byte count in human-readable binary units.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
