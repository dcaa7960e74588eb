package render

import (
	"fmt"
	"time"

	"github.com/gen2brain/go-fitz"
)

const defaultPageTimeout = 90 * time.Second

// FitzOpener opens documents with MuPDF via go-fitz.
type FitzOpener struct {
	// PageTimeout bounds a single page render. MuPDF can spin on
	// pathological files, so renders run on their own goroutine and are
	// abandoned after this long.
	PageTimeout time.Duration
}

func NewFitzOpener() *FitzOpener {
	return &FitzOpener{PageTimeout: defaultPageTimeout}
}

func (o *FitzOpener) Open(payload []byte) (Document, error) {
	if len(payload) == 0 {
		return nil, ErrInvalidDocument
	}
	doc, err := fitz.NewFromMemory(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	timeout := o.PageTimeout
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}
	return &fitzDocument{doc: doc, timeout: timeout}, nil
}

type fitzDocument struct {
	doc     *fitz.Document
	timeout time.Duration
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) RenderPage(page int, dpi float64) ([]byte, error) {
	if page < 0 || page >= d.doc.NumPage() {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, d.doc.NumPage())
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	type result struct {
		png []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		png, err := d.doc.ImagePNG(page, dpi)
		ch <- result{png: png, err: err}
	}()
	select {
	case res := <-ch:
		return res.png, res.err
	case <-time.After(d.timeout):
		go func() { <-ch }() // drain so goroutine can exit
		return nil, fmt.Errorf("render of page %d timed out after %v", page, d.timeout)
	}
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
