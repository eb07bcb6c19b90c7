package editor

import "time"

// Record is one accepted edit. Records are immutable once appended.
type Record struct {
	ID          string    `json:"id"`
	Instruction string    `json:"instruction"`
	JobContext  string    `json:"jobContext,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Previous    string    `json:"previous"`
	Result      string    `json:"result"`
	CreatedAt   time.Time `json:"createdAt"`
}

// History is a linear list of records and a cursor. Cursor 0 is the
// original upload; cursor k means records[k-1] is the visible version.
type History struct {
	records []Record
	cursor  int
}

// Cursor returns the current position.
func (h *History) Cursor() int { return h.cursor }

// Len returns the number of records, including undone ones.
func (h *History) Len() int { return len(h.records) }

// Records returns a copy of every record.
func (h *History) Records() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

func (h *History) canUndo() bool { return h.cursor > 0 }
func (h *History) canRedo() bool { return h.cursor < len(h.records) }

// push drops any undone records and appends r as the new head.
func (h *History) push(r Record) {
	h.records = append(h.records[:h.cursor:h.cursor], r)
	h.cursor = len(h.records)
}

// visible returns the text at the cursor, or original at cursor 0.
func (h *History) visible(original string) string {
	if h.cursor == 0 {
		return original
	}
	return h.records[h.cursor-1].Result
}

// validate checks that the records form a chain starting at original.
func validate(original string, records []Record, cursor int) error {
	if cursor < 0 || cursor > len(records) {
		return ErrCorruptHistory
	}
	prev := original
	for _, r := range records {
		if r.Previous != prev {
			return ErrCorruptHistory
		}
		prev = r.Result
	}
	return nil
}
