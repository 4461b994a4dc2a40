package rehydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	formatTag = "mediavida_dialogue_text_v2_tuples"
	sourceTag = "mediavida"

	turnRepresentation = "[speaker_letter, text] (null if missing)"

	redistributionNotice = "This file contains user-generated content retrieved at runtime from Mediavida. Do not redistribute."
)

// MissStats counts resolution outcomes for one dialogue.
type MissStats struct {
	NTurns   int `json:"n_turns"`
	NMissing int `json:"n_missing"`
}

// Document is the rehydrated artifact, written once per run and never merged
// with prior output. Only speaker letters appear in it, never raw usernames.
type Document struct {
	Format             string               `json:"format"`
	Source             string               `json:"source"`
	ThreadID           any                  `json:"thread_id"`
	ThreadURL          string               `json:"thread_url"`
	SnapshotDate       any                  `json:"snapshot_date"`
	RehydratedAt       string               `json:"rehydrated_at"`
	TurnRepresentation string               `json:"turn_representation"`
	Dialogues          map[string][]Turn    `json:"dialogues"`
	Missing            map[string]MissStats `json:"missing"`
	Notice             string               `json:"notice"`
}

func newDocument(in *Input, dialogues map[string][]Turn, missing map[string]MissStats) *Document {
	return &Document{
		Format:             formatTag,
		Source:             sourceTag,
		ThreadID:           in.ThreadID,
		ThreadURL:          in.ThreadURL,
		SnapshotDate:       in.SnapshotDate,
		RehydratedAt:       time.Now().Format("2006-01-02"),
		TurnRepresentation: turnRepresentation,
		Dialogues:          dialogues,
		Missing:            missing,
		Notice:             redistributionNotice,
	}
}

// Write emits the document as indented JSON, keeping non-ASCII and HTML
// characters literal. The parent directory is created if absent.
func (d *Document) Write(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
