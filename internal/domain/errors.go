package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery signals a search request without query text.
	ErrEmptyQuery = errors.New("empty query")
	// ErrInvalidEvent signals an upload notification that cannot be decoded.
	ErrInvalidEvent = errors.New("invalid upload event")
)

// Kind classifies a pipeline failure so transports can map it without parsing messages.
type Kind string

const (
	// KindProcessing covers ingestion failures: extraction, metadata or index write.
	KindProcessing Kind = "processing"
	// KindIndex covers index write/read failures.
	KindIndex Kind = "index"
	// KindQuery covers NLU or search failures on the query path.
	KindQuery Kind = "query"
	// KindSearch covers index query failures.
	KindSearch Kind = "search"
)

// Error is a classified failure with the context needed to correlate it in logs.
type Error struct {
	Kind      Kind
	Bucket    string
	ObjectKey string
	Query     string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(" error")
	if e.Bucket != "" {
		fmt.Fprintf(&b, " bucket=%q", e.Bucket)
	}
	if e.ObjectKey != "" {
		fmt.Fprintf(&b, " key=%q", e.ObjectKey)
	}
	if e.Query != "" {
		fmt.Fprintf(&b, " query=%q", e.Query)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NewProcessingError wraps an ingestion failure for the given object.
func NewProcessingError(bucket, key string, err error) error {
	return &Error{Kind: KindProcessing, Bucket: bucket, ObjectKey: key, Err: err}
}

// NewIndexError wraps an index write/read failure for the given object.
func NewIndexError(key string, err error) error {
	return &Error{Kind: KindIndex, ObjectKey: key, Err: err}
}

// NewQueryError wraps a query path failure for the given raw text.
func NewQueryError(query string, err error) error {
	return &Error{Kind: KindQuery, Query: query, Err: err}
}

// NewSearchError wraps an index query failure for the given keyword.
func NewSearchError(keyword string, err error) error {
	return &Error{Kind: KindSearch, Query: keyword, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HasKind reports whether any classified error in the chain has the given kind.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
