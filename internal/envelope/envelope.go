// Package envelope builds the uniform success body {data, meta?, timestamp}.
package envelope

import (
	"time"

	"github.com/HerbHall/wakdex/internal/paging"
)

// TimeFormat is ISO 8601 in UTC with millisecond precision.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t for a response body.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// Envelope wraps every successful response. Meta is present only for
// paginated reads.
type Envelope struct {
	Data      any          `json:"data"`
	Meta      *paging.Meta `json:"meta,omitempty"`
	Timestamp string       `json:"timestamp"`
}

// Builder stamps envelopes with the current time.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder reading time from now, or from time.Now when
// now is nil.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Now returns the builder's current time.
func (b *Builder) Now() time.Time {
	return b.now()
}

// Single wraps one entity without pagination metadata.
func (b *Builder) Single(data any) Envelope {
	return Envelope{Data: data, Timestamp: Timestamp(b.now())}
}

// Page wraps one page of results. A nil slice is emitted as [] so clients
// never see "data": null.
func Page[D any](b *Builder, data []D, opts paging.Options, totalCount int) Envelope {
	if data == nil {
		data = []D{}
	}
	meta := paging.NewMeta(opts, len(data), totalCount)
	return Envelope{Data: data, Meta: &meta, Timestamp: Timestamp(b.now())}
}
