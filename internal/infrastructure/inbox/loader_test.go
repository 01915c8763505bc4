package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voltway/internal/domain/triage"
)

func TestParseFile(t *testing.T) {
	data := []byte(`{
		"from": " qa@brakeparts.example ",
		"subject": "Brake disc defect",
		"body": "Batch 7 fails the torque test.",
		"date": "2025-04-09 08:15:00",
		"part_id": "P323"
	}`)

	msg, err := ParseFile("/mail/export/mail_014.json", data)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if msg.Filename != "mail_014.json" {
		t.Fatalf("ParseFile() filename = %q", msg.Filename)
	}
	if msg.Sender != "qa@brakeparts.example" || msg.PartID != "P323" {
		t.Fatalf("ParseFile() = %+v", msg)
	}
	want := time.Date(2025, 4, 9, 8, 15, 0, 0, time.UTC)
	if !msg.ReceivedAt.Equal(want) {
		t.Fatalf("ParseFile() received_at = %v", msg.ReceivedAt)
	}
}

func TestParseFileDateLayouts(t *testing.T) {
	for _, date := range []string{"2025-04-09T08:15:00Z", "2025-04-09 08:15:00", "2025-04-09"} {
		data := []byte(`{"from":"a@b.example","subject":"s","body":"b","date":"` + date + `"}`)
		if _, err := ParseFile("mail.json", data); err != nil {
			t.Fatalf("ParseFile(%q) error = %v", date, err)
		}
	}

	bad := []byte(`{"from":"a@b.example","subject":"s","body":"b","date":"09/04/2025"}`)
	if _, err := ParseFile("mail.json", bad); err == nil {
		t.Fatal("ParseFile(bad date) expected error")
	}
}

func TestParseFileRejectsMalformed(t *testing.T) {
	if _, err := ParseFile("mail.json", []byte(`{not json`)); err == nil {
		t.Fatal("ParseFile(garbage) expected error")
	}
	if _, err := ParseFile("mail.json", []byte(`{"from":"a@b.example","subject":"s"}`)); !errors.Is(err, triage.ErrValidation) {
		t.Fatalf("ParseFile(empty body) error = %v", err)
	}
}

func TestLoadDirSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"mail_002.json": `{"from":"b@s.example","subject":"two","body":"second"}`,
		"mail_001.json": `{"from":"a@s.example","subject":"one","body":"first"}`,
		"notes.txt":     "not an email",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	messages, err := LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("LoadDir() len = %d", len(messages))
	}
	if messages[0].Filename != "mail_001.json" || messages[1].Filename != "mail_002.json" {
		t.Fatalf("LoadDir() order = %s, %s", messages[0].Filename, messages[1].Filename)
	}
}

func TestLoadDirMissingDirectory(t *testing.T) {
	if _, err := LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("LoadDir(missing) expected error")
	}
}
