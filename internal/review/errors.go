package review

import (
	"errors"
	"fmt"
)

var (
	ErrParse             = errors.New("review: game could not be parsed")
	ErrEvaluationService = errors.New("review: evaluation service failed")
	ErrAlignment         = errors.New("review: evaluation series misaligned with moves")
	ErrSuperseded        = errors.New("review: load superseded by a newer request")
	ErrNoGame            = errors.New("review: no game loaded")
)

// ParseError reports raw move text that is not a legal game. Token and Ply point at the
// first offending move when the source can tell.
type ParseError struct {
	Ply   int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	msg := ErrParse.Error()
	if e.Token != "" {
		msg = fmt.Sprintf("%s at ply %d (%q)", msg, e.Ply, e.Token)
	}
	if e.Err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// EvaluationServiceError wraps a failed or timed-out evaluation call.
type EvaluationServiceError struct {
	Positions int
	Err       error
}

func (e *EvaluationServiceError) Error() string {
	return fmt.Sprintf("%s (%d positions): %v", ErrEvaluationService.Error(), e.Positions, e.Err)
}

func (e *EvaluationServiceError) Unwrap() error { return e.Err }

func (e *EvaluationServiceError) Is(target error) bool { return target == ErrEvaluationService }

// AlignmentError means a collaborator returned a series of the wrong length.
// It is a defect upstream and is never repaired by truncating or padding.
type AlignmentError struct {
	What string
	Want int
	Got  int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%s: %s length %d, want %d", ErrAlignment.Error(), e.What, e.Got, e.Want)
}

func (e *AlignmentError) Is(target error) bool { return target == ErrAlignment }
