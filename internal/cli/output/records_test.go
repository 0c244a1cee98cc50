package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/pdmvault/pkg/vault"
	"github.com/marmos91/pdmvault/pkg/version"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes))
	}
}

func TestPrintRecords(t *testing.T) {
	records := []vault.FileRecord{
		{
			Filename:    "bracket.sldprt",
			Description: "Mounting bracket",
			Status:      version.StatusTracked,
			SizeBytes:   2048,
			LockedBy:    "alice",
		},
		{
			Filename:    "housing.sldasm",
			Description: vault.DefaultDescription,
			Status:      version.StatusModified,
			SizeBytes:   100,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintRecords(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "bracket.sldprt")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "housing.sldasm")
	assert.Contains(t, out, "-", "unlocked files show a dash")
}

func TestPrintRecord(t *testing.T) {
	record := &vault.FileRecord{
		Filename:    "bracket.sldprt",
		Description: "Mounting bracket",
		Status:      version.StatusTracked,
		SizeBytes:   2048,
	}

	var buf bytes.Buffer
	require.NoError(t, PrintRecord(&buf, record))

	out := buf.String()
	assert.Contains(t, out, "bracket.sldprt")
	assert.Contains(t, out, "Mounting bracket")
	assert.NotContains(t, out, "Locked By")
}
