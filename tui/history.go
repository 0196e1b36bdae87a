// Package tui provides a Bubble Tea terminal UI for the modcore engine.
package tui

// history keeps recent inputs for up/down recall. A cursor of -1 means
// the player is typing fresh input.
type history struct {
	lines  []string
	limit  int
	cursor int
}

func newHistory(limit int) *history {
	return &history{limit: limit, cursor: -1}
}

// add records an input, dropping consecutive duplicates and trimming
// to the limit.
func (h *history) add(line string) {
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return
	}
	h.lines = append(h.lines, line)
	if len(h.lines) > h.limit {
		h.lines = h.lines[len(h.lines)-h.limit:]
	}
	h.cursor = -1
}

// older steps back in time. Returns false when there is no history.
func (h *history) older() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.lines) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.lines[h.cursor], true
}

// newer steps forward; walking past the newest entry returns to fresh
// input.
func (h *history) newer() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.lines) {
		h.cursor = -1
		return "", false
	}
	return h.lines[h.cursor], true
}
