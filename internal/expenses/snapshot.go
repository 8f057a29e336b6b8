package expenses

import (
	"encoding/json"
	"errors"
	"fmt"

	"spesetracker/internal/core"
)

// ErrCorruptSnapshot is returned when a persisted blob cannot be turned back
// into a valid collection.
var ErrCorruptSnapshot = errors.New("corrupt expense snapshot")

// EncodeSnapshot serializes the whole collection, in order, as a JSON array.
func EncodeSnapshot(records []core.Expense) ([]byte, error) {
	if records == nil {
		records = []core.Expense{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a blob written by EncodeSnapshot. Every record needs
// a non-empty id and ids must be unique; anything else is ErrCorruptSnapshot.
func DecodeSnapshot(data []byte) ([]core.Expense, error) {
	var records []core.Expense
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		id := records[i].ID
		if id == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrCorruptSnapshot, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrCorruptSnapshot, id)
		}
		seen[id] = struct{}{}
		records[i].Date = records[i].Date.UTC()
	}
	if records == nil {
		records = []core.Expense{}
	}
	return records, nil
}
