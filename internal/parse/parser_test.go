package parse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushan1140/invoice-po-matcher/constants"
	"github.com/raushan1140/invoice-po-matcher/internal/extract"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(_ context.Context, _, _ string) (extract.Result, error) {
	if s.err != nil {
		return extract.Result{}, s.err
	}
	return extract.Result{Text: s.text, Pages: 1, Format: constants.PDF}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseInvoice(t *testing.T) {
	p := NewParser(stubExtractor{text: sampleInvoiceText}, discardLogger())

	rec, err := p.ParseInvoice(context.Background(), "/tmp/invoice.pdf", "")
	require.NoError(t, err)

	assert.Equal(t, "INV-2024-100", rec.InvoiceNumber)
	assert.Equal(t, "abc electronics", rec.Vendor)
	assert.Equal(t, "2024-09-15", rec.Date)
	assert.Equal(t, 12000.0, rec.Total)
	require.Len(t, rec.LineItems, 1)
	assert.Equal(t, "Laptop Computer", rec.LineItems[0].Item)
	assert.Equal(t, 10, rec.LineItems[0].Qty)
	assert.Equal(t, sampleInvoiceText, rec.RawText)
	assert.False(t, rec.ExtractionTimestamp.IsZero())
}

func TestParseInvoiceEmptyText(t *testing.T) {
	p := NewParser(stubExtractor{text: "   \n  "}, discardLogger())

	_, err := p.ParseInvoice(context.Background(), "/tmp/blank.pdf", "")
	require.Error(t, err)

	var extractionErr *extract.ExtractionError
	assert.True(t, errors.As(err, &extractionErr))
}

func TestParseInvoicePropagatesExtractorError(t *testing.T) {
	p := NewParser(stubExtractor{err: extract.ErrUnsupportedFileType}, discardLogger())

	_, err := p.ParseInvoice(context.Background(), "/tmp/invoice.docx", "")
	assert.ErrorIs(t, err, extract.ErrUnsupportedFileType)
}

// The same text must always produce the same structured fields.
func TestParseTextDeterministic(t *testing.T) {
	p := NewParser(stubExtractor{}, discardLogger())

	a := p.ParseText(sampleInvoiceText)
	b := p.ParseText(sampleInvoiceText)

	a.ExtractionTimestamp = b.ExtractionTimestamp
	assert.Equal(t, a, b)
}
