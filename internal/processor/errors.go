package processor

import (
	"errors"
	"fmt"
)

// Stage names a pipeline step.
type Stage string

const (
	StageFetch      Stage = "fetch"
	StageExtract    Stage = "extract"
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
)

var (
	ErrFetch      = errors.New("fetch media failed")
	ErrExtract    = errors.New("extract audio failed")
	ErrTranscribe = errors.New("transcribe failed")
	ErrSummarize  = errors.New("summarize failed")
)

// StageError reports which stage ended a pipeline run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	if sentinel := stageSentinel(e.Stage); sentinel != nil {
		return []error{sentinel, e.Err}
	}
	return []error{e.Err}
}

func stageSentinel(s Stage) error {
	switch s {
	case StageFetch:
		return ErrFetch
	case StageExtract:
		return ErrExtract
	case StageTranscribe:
		return ErrTranscribe
	case StageSummarize:
		return ErrSummarize
	default:
		return nil
	}
}

func stageErr(s Stage, err error) *StageError {
	return &StageError{Stage: s, Err: err}
}
