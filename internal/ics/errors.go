package ics

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across the conversion pipeline.
var (
	ErrDecode  = errors.New("calendar text could not be decoded")
	ErrParse   = errors.New("calendar could not be parsed")
	ErrExtract = errors.New("calendar events could not be extracted")
)

// DecodeError reports input bytes that are not text under any attempted
// encoding.
type DecodeError struct {
	Source    Source
	Encodings []string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (tried %v): %v", e.Source.Name(), e.Encodings, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// ParseError reports a calendar container that cannot be parsed at all.
type ParseError struct {
	Source Source
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source.Name(), e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// ExtractionError reports a parsed component tree the extractor cannot walk.
type ExtractionError struct {
	Source Source
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Source.Name(), e.Err)
}

func (e *ExtractionError) Unwrap() []error { return []error{ErrExtract, e.Err} }
