package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voltway/internal/domain/triage"
	"voltway/internal/errs"
)

// emailDocument is the on-disk shape of one exported supplier email.
type emailDocument struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Date    string `json:"date"`
	PartID  string `json:"part_id"`
	OrderID string `json:"order_id"`
}

// ParseFile decodes one exported email into a message. The base name of the
// file becomes the message's natural key.
func ParseFile(path string, data []byte) (triage.Message, error) {
	var doc emailDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return triage.Message{}, errs.Wrapf(err, "decode email file %s", path)
	}

	msg := triage.Message{
		Filename: filepath.Base(path),
		Sender:   strings.TrimSpace(doc.From),
		Subject:  strings.TrimSpace(doc.Subject),
		Body:     doc.Body,
		PartID:   strings.TrimSpace(doc.PartID),
		OrderID:  strings.TrimSpace(doc.OrderID),
	}
	if doc.Date != "" {
		received, err := parseDate(doc.Date)
		if err != nil {
			return triage.Message{}, errs.Wrapf(err, "parse date in %s", path)
		}
		msg.ReceivedAt = received
	}

	if err := msg.Validate(); err != nil {
		return triage.Message{}, err
	}
	return msg, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// LoadDir reads every .json email in dir, sorted by name for deterministic
// batch order.
func LoadDir(ctx context.Context, dir string) ([]triage.Message, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrapf(err, "read email directory %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	messages := make([]triage.Message, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errs.Wrapf(err, "read email file %s", name)
		}
		msg, err := ParseFile(name, data)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
