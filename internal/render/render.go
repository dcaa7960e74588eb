package render

import "errors"

// ErrInvalidDocument is returned when a payload cannot be opened as a
// document. Callers treat it as a load error and keep the recents store
// untouched.
var ErrInvalidDocument = errors.New("invalid or unreadable document")

// ErrPageOutOfRange is returned when a render asks for a page the open
// document does not have.
var ErrPageOutOfRange = errors.New("page out of range")

// DefaultDPI is used when a caller asks for a page at dpi <= 0.
const DefaultDPI = 144.0

// Opener opens raw document bytes for rendering.
type Opener interface {
	Open(payload []byte) (Document, error)
}

// Document is an open document. Pages are 0-based. RenderPage returns
// PNG bytes. Close releases the underlying resources.
type Document interface {
	PageCount() int
	RenderPage(page int, dpi float64) ([]byte, error)
	Close() error
}
