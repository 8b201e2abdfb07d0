package sysfs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAttr(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadString(t *testing.T) {
	dir := t.TempDir()

	path := writeAttr(t, dir, "status", "Charging\n")
	got, err := ReadString(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Charging" {
		t.Errorf("ReadString() = %q, want %q", got, "Charging")
	}

	if _, err := ReadString(filepath.Join(dir, "missing")); err == nil {
		t.Error("ReadString() on a missing attribute should fail")
	}
}

func TestReadInt32(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    int32
		wantErr bool
	}{
		{name: "positive", content: "450000\n", want: 450000},
		{name: "negative", content: "-350000\n", want: -350000},
		{name: "garbage", content: "unknown\n", wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeAttr(t, dir, "current_now", tt.content)
			got, err := ReadInt32(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadInt32() error = %v, wantErr %t", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ReadInt32() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadUint32RejectsNegative(t *testing.T) {
	dir := t.TempDir()
	path := writeAttr(t, dir, "voltage_now", "-1\n")
	if _, err := ReadUint32(path); err == nil {
		t.Error("ReadUint32() should reject a negative value")
	}
}

func TestReadBool(t *testing.T) {
	dir := t.TempDir()

	path := writeAttr(t, dir, "online", "1\n")
	got, err := ReadBool(path)
	if err != nil || !got {
		t.Errorf("ReadBool(1) = %t, %v", got, err)
	}

	path = writeAttr(t, dir, "online", "0\n")
	got, err = ReadBool(path)
	if err != nil || got {
		t.Errorf("ReadBool(0) = %t, %v", got, err)
	}
}

func TestWriteUint32(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input_current_limit")

	if err := WriteUint32(path, 1500000); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1500000\n" {
		t.Errorf("written contents = %q, want %q", string(b), "1500000\n")
	}

	got, err := ReadUint32(path)
	if err != nil || got != 1500000 {
		t.Errorf("ReadUint32() after write = %d, %v", got, err)
	}
}

func TestWriteBool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "online")

	if err := WriteBool(path, true); err != nil {
		t.Fatal(err)
	}
	if got, err := ReadBool(path); err != nil || !got {
		t.Errorf("ReadBool() after WriteBool(true) = %t, %v", got, err)
	}
}
