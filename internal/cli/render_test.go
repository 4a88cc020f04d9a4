package cli

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sampleRow struct {
	UID       int32
	Name      *string
	CreatedAt time.Time
	Note      *string
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestRenderTable_EmptySlice(t *testing.T) {
	out := captureStdout(t, func() {
		renderTable([]*sampleRow{})
	})
	assert.Contains(t, out, "no rows")
}

func TestRenderTable_FormatsFieldsAndHeader(t *testing.T) {
	name := "nightly-backup"
	out := captureStdout(t, func() {
		renderTable([]*sampleRow{
			{UID: 1, Name: &name, CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), Note: nil},
		})
	})

	assert.Contains(t, out, "UID")
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "nightly-backup")
	assert.Contains(t, out, "2024-01-15")
}

func TestRenderTable_TruncatesLongCells(t *testing.T) {
	long := strings.Repeat("x", maxCellLen+20)
	out := captureStdout(t, func() {
		renderTable([]*sampleRow{{UID: 1, Name: &long}})
	})

	assert.Contains(t, out, strings.Repeat("x", maxCellLen)+"...")
	assert.NotContains(t, out, strings.Repeat("x", maxCellLen+1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))
	assert.Equal(t, strings.Repeat("a", maxCellLen)+"...", truncate(strings.Repeat("a", maxCellLen+1)))
}
