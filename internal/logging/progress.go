package logging

import (
	"github.com/rs/zerolog"
)

// Progress emits "progress" events for a long-running step
type Progress struct {
	logger  zerolog.Logger
	message string
	total   int
	current int
}

// NewProgress creates a progress reporter for total items
func NewProgress(logger zerolog.Logger, message string, total int) *Progress {
	return &Progress{logger: logger, message: message, total: total}
}

// IterDone records n more finished items and logs the new position
func (p *Progress) IterDone(n int) {
	p.current += n
	p.log()
}

// Report sets the absolute position; it matches batch.ProgressFunc
func (p *Progress) Report(done, total int) {
	p.current = done
	p.total = total
	p.log()
}

// Current returns the number of finished items
func (p *Progress) Current() int {
	return p.current
}

// log omits the total while it is unknown (zero)
func (p *Progress) log() {
	event := p.logger.Info().
		Str("event", "progress").
		Int("current", p.current)
	if p.total > 0 {
		event = event.Int("total", p.total)
	}
	event.Msg(p.message)
}
