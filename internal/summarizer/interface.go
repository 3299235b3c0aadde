package summarizer

import "context"

// Summarizer condenses a transcript into a short markdown summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
