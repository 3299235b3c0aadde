package models

import "time"

// ChannelRef pairs a human-readable channel name with its stable identifier.
type ChannelRef struct {
	Name string
	ID   string
}

// Item is one published unit of content, e.g. a single video.
type Item struct {
	ID          string
	Title       string
	URL         string
	PublishedAt time.Time
}

// PipelineResult carries the outputs of one pipeline run. A nil field means
// the stage producing it did not complete.
type PipelineResult struct {
	Transcript *string
	Summary    *string
}

// HasTranscript reports whether a non-empty transcript is present.
func (r PipelineResult) HasTranscript() bool {
	return r.Transcript != nil && *r.Transcript != ""
}

// HasSummary reports whether a non-empty summary is present.
func (r PipelineResult) HasSummary() bool {
	return r.Summary != nil && *r.Summary != ""
}
