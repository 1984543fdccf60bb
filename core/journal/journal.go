package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"vebetterdao/core/events"
	"vebetterdao/storage"
)

var (
	seqKey      = []byte("journal/seq")
	entryPrefix = "journal/entry/"
)

// Entry is one persisted event.
type Entry struct {
	Seq        uint64            `json:"seq"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Journal appends protocol events to a key-value store so downstream
// consumers can replay history the live websocket stream already dropped.
type Journal struct {
	mu   sync.Mutex
	db   storage.Database
	next uint64
}

// Open restores the append cursor from the store.
func Open(db storage.Database) (*Journal, error) {
	if db == nil {
		return nil, fmt.Errorf("journal: database is required")
	}
	j := &Journal{db: db}
	raw, err := db.Get(seqKey)
	switch {
	case err == nil:
		if len(raw) != 8 {
			return nil, fmt.Errorf("journal: corrupt sequence record")
		}
		j.next = binary.BigEndian.Uint64(raw)
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, err
	}
	return j, nil
}

func entryKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", entryPrefix, seq))
}

// Append persists one event and advances the cursor.
func (j *Journal) Append(event events.Event) error {
	if j == nil || event == nil {
		return nil
	}
	entry := Entry{Type: event.EventType(), Attributes: events.Attributes(event)}

	j.mu.Lock()
	defer j.mu.Unlock()
	entry.Seq = j.next
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := j.db.Put(entryKey(entry.Seq), data); err != nil {
		return err
	}
	var cursor [8]byte
	binary.BigEndian.PutUint64(cursor[:], entry.Seq+1)
	if err := j.db.Put(seqKey, cursor[:]); err != nil {
		return err
	}
	j.next = entry.Seq + 1
	return nil
}

// Len returns the number of appended entries.
func (j *Journal) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.next
}

// Read returns up to limit entries starting at seq from.
func (j *Journal) Read(from, limit uint64) ([]Entry, error) {
	j.mu.Lock()
	end := j.next
	j.mu.Unlock()

	entries := make([]Entry, 0, limit)
	for seq := from; seq < end && uint64(len(entries)) < limit; seq++ {
		raw, err := j.db.Get(entryKey(seq))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("journal: decode entry %d: %w", seq, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
