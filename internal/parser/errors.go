package parser

import "errors"

var (
	// ErrNotFound is returned when the description document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrMalformedDocument is returned when the document does not match the schema.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrInvalidNumericLiteral is returned when a numeric attribute component does not parse.
	ErrInvalidNumericLiteral = errors.New("invalid numeric literal")
)
