package tui

import (
	"strings"
	"testing"

	"shrink/internal/processor"
)

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:         "0 B",
		1023:      "1023 B",
		1024:      "1.0 KiB",
		1536:      "1.5 KiB",
		5 << 20:   "5.0 MiB",
		-2048:     "-2.0 KiB",
		3 << 30:   "3.0 GiB",
		1<<40 + 1: "1.0 TiB",
	}
	for in, want := range cases {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary([]SummaryRow{
		{Label: "Files", Value: "3"},
		{Label: "Bytes saved", Value: "1.0 KiB"},
	})
	for _, want := range []string{"Files", "Bytes saved", "1.0 KiB"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestModelAccumulatesUpdates(t *testing.T) {
	m := NewModel(processor.ModeCompress, make(chan processor.ProgressUpdate))

	for _, u := range []updateMsg{
		{TotalDelta: 1, Current: "a/one.png"},
		{TotalDelta: 1, Current: "b/two.jpg"},
		{ProcessedDelta: 1, StrippedDelta: 1, BytesSavedDelta: 2048},
		{ProcessedDelta: 1, PassthroughDelta: 1},
	} {
		next, _ := m.Update(u)
		m = next.(Model)
	}

	if m.total != 2 || m.counts.Processed != 2 || m.counts.Stripped != 1 || m.counts.Passthrough != 1 {
		t.Fatalf("unexpected counts: total %d, %+v", m.total, m.counts)
	}
	if m.current != "b/two.jpg" {
		t.Fatalf("current = %q, want b/two.jpg", m.current)
	}

	view := m.View()
	for _, want := range []string{"compress", "Files: 2/2", "originals kept: 1", "2.0 KiB", "b/two.jpg"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	next, _ := m.Update(doneMsg{})
	if view := next.(Model).View(); view != "" {
		t.Fatalf("expected empty view after done, got %q", view)
	}
}

func TestModelScanHidesSavings(t *testing.T) {
	m := NewModel(processor.ModeScan, make(chan processor.ProgressUpdate))
	next, _ := m.Update(updateMsg{TotalDelta: 1, ProcessedDelta: 1, ErrorDelta: 1})
	view := next.(Model).View()

	if strings.Contains(view, "Bytes saved") || strings.Contains(view, "EXIF stripped") {
		t.Fatalf("scan view should not report savings:\n%s", view)
	}
	if !strings.Contains(view, "errors:1") {
		t.Fatalf("view missing error count:\n%s", view)
	}
}

func TestTruncatePath(t *testing.T) {
	if got := truncatePath("short.jpg", 20); got != "short.jpg" {
		t.Fatalf("truncatePath kept = %q", got)
	}
	got := truncatePath("very/long/directory/name/photo.jpg", 16)
	if len(got) != 16 || !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "photo.jpg") {
		t.Fatalf("truncatePath = %q", got)
	}
}
