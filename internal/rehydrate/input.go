package rehydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Input is the dehydrated, IDs-only reference to a thread's dialogues.
// ThreadID and SnapshotDate pass through to the output untouched.
type Input struct {
	ThreadURL    string
	ThreadID     any
	SnapshotDate any
	// Dialogues keeps each chain raw; a value that is not a JSON array is
	// skipped at rehydration time rather than rejected here.
	Dialogues map[string]json.RawMessage
}

// LoadInput reads and validates a dehydrated input file. It fails before any
// network activity when thread_url is missing or blank, or dialogues is not a
// mapping.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	in, err := ParseInput(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// ParseInput validates the dehydrated JSON shape.
func ParseInput(data []byte) (*Input, error) {
	var raw struct {
		ThreadURL    any             `json:"thread_url"`
		ThreadID     any             `json:"thread_id"`
		SnapshotDate any             `json:"snapshot_date"`
		Dialogues    json.RawMessage `json:"dialogues"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	threadURL, ok := raw.ThreadURL.(string)
	if !ok || strings.TrimSpace(threadURL) == "" {
		return nil, errors.New("missing 'thread_url' in dehydrated input, rehydration is not possible")
	}

	var dialogues map[string]json.RawMessage
	if len(raw.Dialogues) > 0 {
		if err := json.Unmarshal(raw.Dialogues, &dialogues); err != nil {
			return nil, errors.New("missing 'dialogues' mapping in dehydrated input")
		}
	}
	if dialogues == nil {
		return nil, errors.New("missing 'dialogues' mapping in dehydrated input")
	}

	return &Input{
		ThreadURL:    threadURL,
		ThreadID:     raw.ThreadID,
		SnapshotDate: raw.SnapshotDate,
		Dialogues:    dialogues,
	}, nil
}
