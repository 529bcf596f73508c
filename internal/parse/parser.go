package parse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raushan1140/invoice-po-matcher/internal/entity"
	"github.com/raushan1140/invoice-po-matcher/internal/extract"
)

// TextExtractor is the extraction dependency; stubbed in tests.
type TextExtractor interface {
	Extract(ctx context.Context, path, explicitType string) (extract.Result, error)
}

// Parser is the pipeline entry point turning a document file into a
// structured InvoiceRecord.
type Parser struct {
	extractor  TextExtractor
	normalizer *Normalizer
	logger     *slog.Logger
}

func NewParser(extractor TextExtractor, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{extractor: extractor, normalizer: NewNormalizer(), logger: logger}
}

// ParseInvoice extracts text from the file at path and applies pattern
// extraction plus normalization. explicitType may be empty to infer the
// format from the extension. Infrastructure failures surface as errors;
// missing fields never do.
func (p *Parser) ParseInvoice(ctx context.Context, path, explicitType string) (entity.InvoiceRecord, error) {
	res, err := p.extractor.Extract(ctx, path, explicitType)
	if err != nil {
		return entity.InvoiceRecord{}, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return entity.InvoiceRecord{}, &extract.ExtractionError{
			Path:  path,
			Cause: fmt.Errorf("no text could be extracted"),
		}
	}

	rec := p.ParseText(res.Text)
	p.logger.Info("parse.ok",
		"path", path,
		"invoice_number", rec.InvoiceNumber,
		"vendor", rec.Vendor,
		"date", rec.Date,
		"total", rec.Total,
		"line_items", len(rec.LineItems),
	)
	return rec, nil
}

// ParseText runs field extraction and normalization over already-extracted
// text. Deterministic for a fixed clock: the same text always yields the
// same record.
func (p *Parser) ParseText(text string) entity.InvoiceRecord {
	raw := RawFields{
		InvoiceNumber: ExtractField(text, FieldInvoiceNumber),
		Vendor:        ExtractField(text, FieldVendor),
		Date:          ExtractField(text, FieldDate),
		Total:         ExtractField(text, FieldTotal),
		LineItems:     ExtractLineItems(text),
		RawText:       text,
	}
	p.logger.Debug("parse.fields",
		"invoice_number", raw.InvoiceNumber,
		"vendor", raw.Vendor,
		"date", raw.Date,
		"total", raw.Total,
		"line_items", len(raw.LineItems),
	)
	return p.normalizer.Normalize(raw)
}
