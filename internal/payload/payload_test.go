// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package payload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAdmit(t *testing.T) {
	tests := []struct {
		name         string
		fileName     string
		size         int64
		declaredType string
		wantErr      error
	}{
		{
			name:     "text file within limit",
			fileName: "notes.txt",
			size:     1024,
		},
		{
			name:         "pdf by declared type",
			fileName:     "scan",
			size:         2048,
			declaredType: "application/pdf",
		},
		{
			name:         "declared type with parameters",
			fileName:     "data",
			size:         10,
			declaredType: "text/csv; charset=utf-8",
		},
		{
			name:         "oversized rejected regardless of type",
			fileName:     "big.png",
			size:         MaxSize + 1,
			declaredType: "image/png",
			wantErr:      ErrTooLarge,
		},
		{
			name:     "exactly at the ceiling admitted",
			fileName: "edge.pdf",
			size:     MaxSize,
		},
		{
			name:     "empty declared type falls back to extension",
			fileName: "chart.webp",
			size:     100,
		},
		{
			name:     "empty declared type with unknown extension rejected",
			fileName: "binary.exe",
			size:     100,
			wantErr:  ErrUnsupportedType,
		},
		{
			name:         "disallowed declared type with allowed extension admitted",
			fileName:     "export.csv",
			size:         100,
			declaredType: "application/octet-stream",
		},
		{
			name:         "disallowed declared type and extension rejected",
			fileName:     "tool.exe",
			size:         100,
			declaredType: "application/x-msdownload",
			wantErr:      ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Admit(tt.fileName, tt.size, tt.declaredType)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Admit() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Admit() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromBytes_TransportSelection(t *testing.T) {
	// Valid UTF-8 with a text extension travels as literal text.
	p := FromBytes("table.csv", []byte("a,b\n1,2"))
	if p.Binary() {
		t.Fatal("csv content should travel as text")
	}
	if p.Text != "a,b\n1,2" {
		t.Errorf("text = %q", p.Text)
	}

	// A known binary extension travels as bytes with its content type.
	p = FromBytes("figure.png", []byte{0x89, 'P', 'N', 'G', 0, 0})
	if !p.Binary() {
		t.Fatal("png content should travel as bytes")
	}
	if p.ContentType != "image/png" {
		t.Errorf("content type = %q, want image/png", p.ContentType)
	}

	// A text extension holding invalid UTF-8 falls back to bytes.
	p = FromBytes("broken.txt", []byte{0xff, 0xfe, 0x00})
	if !p.Binary() {
		t.Error("invalid UTF-8 should travel as bytes")
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Title"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "doc.md" || p.Text != "# Title" || p.Size != 7 {
		t.Errorf("payload = %+v", p)
	}

	// Unknown extension is rejected before any read.
	bad := filepath.Join(dir, "tool.bin")
	if err := os.WriteFile(bad, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(bad); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Read(tool.bin) = %v, want ErrUnsupportedType", err)
	}

	if _, err := Read(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Read on a missing file should fail")
	}
}

func TestRead_Oversized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")

	if err := os.WriteFile(path, []byte(strings.Repeat("x", MaxSize+1)), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Read(big.txt) = %v, want ErrTooLarge", err)
	}
}

func TestFromText(t *testing.T) {
	p := FromText("hello")
	if p.Binary() || p.Text != "hello" || p.Size != 5 {
		t.Errorf("payload = %+v", p)
	}
}
