package csvtext_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/artpar/usagelens/domain/csvtext"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `"a, b",2,"c"`, []string{"a, b", "2", "c"}},
		{"empty fields", "a,,c", []string{"a", "", "c"}},
		{"trailing empty", "a,b,", []string{"a", "b", ""}},
		{"single field", "alone", []string{"alone"}},
		{"empty line", "", []string{""}},
		{"doubled quote", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := csvtext.ParseLine(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseFields_TrimsWhitespace(t *testing.T) {
	got := csvtext.ParseFields(" a , b ,c")
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitLines_BOM(t *testing.T) {
	lines := csvtext.SplitLines("\ufeffTimestamp,User\n2024-01-01,alice\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "Timestamp,User" {
		t.Errorf("header = %q, BOM not stripped", lines[0])
	}
}

func TestSplitLines_CRLF(t *testing.T) {
	lines := csvtext.SplitLines("a,b\r\n1,2\r\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[1] != "1,2" {
		t.Errorf("row = %q, want %q", lines[1], "1,2")
	}
}

func TestSplitDocument(t *testing.T) {
	doc, err := csvtext.SplitDocument("h1,h2\na,b\nc,d\n")
	if err != nil {
		t.Fatalf("SplitDocument: %v", err)
	}
	if doc.Header != "h1,h2" {
		t.Errorf("Header = %q", doc.Header)
	}
	if len(doc.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(doc.Rows))
	}
}

func TestSplitDocument_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "header,only\n"} {
		_, err := csvtext.SplitDocument(text)
		if !errors.Is(err, csvtext.ErrEmptyInput) {
			t.Errorf("SplitDocument(%q) err = %v, want ErrEmptyInput", text, err)
		}
	}
}

func TestBatches_Reassemble(t *testing.T) {
	rows := make([]string, 2500)
	for i := range rows {
		rows[i] = strings.Repeat("x", i%7)
	}

	for _, size := range []int{1, 3, 1000, 2500, 10000} {
		batches := csvtext.Batches(rows, size)
		var flat []string
		for _, b := range batches {
			flat = append(flat, b...)
		}
		if len(flat) != len(rows) {
			t.Fatalf("size %d: reassembled %d rows, want %d", size, len(flat), len(rows))
		}
		for i := range rows {
			if flat[i] != rows[i] {
				t.Fatalf("size %d: row %d differs", size, i)
			}
		}
	}
}

func TestBatches_DefaultSize(t *testing.T) {
	rows := make([]string, 1500)
	batches := csvtext.Batches(rows, 0)
	if len(batches) != 2 {
		t.Errorf("got %d batches, want 2", len(batches))
	}
}

func TestFormatLine_RoundTrip(t *testing.T) {
	fields := []string{"plain", "with, comma", `with "quote"`, ""}
	line := csvtext.FormatLine(fields)
	got := csvtext.ParseLine(line)
	if len(got) != len(fields) {
		t.Fatalf("round trip produced %d fields, want %d", len(got), len(fields))
	}
	for i := range fields {
		if got[i] != fields[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], fields[i])
		}
	}
}

func TestEscapeField(t *testing.T) {
	if got := csvtext.EscapeField("a, b"); got != `"a, b"` {
		t.Errorf("EscapeField = %q", got)
	}
	if got := csvtext.EscapeField("plain"); got != "plain" {
		t.Errorf("EscapeField = %q", got)
	}
}
