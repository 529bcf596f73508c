package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/raushan1140/invoice-po-matcher/constants"
)

// Config holds text extraction settings. Everything that used to be ambient
// library state (binary paths, segmentation mode, blur radius) is explicit.
type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int // page segmentation mode; 6 = uniform block of text
	MedianRadius  int // median blur window radius; default 2 (5x5 window)
	ArtifactDir   string
}

// Result is the raw text pulled out of one document.
type Result struct {
	Text     string
	Pages    int
	Format   string // constants.PDF | constants.IMAGE
	Duration time.Duration
}

// Extractor converts a PDF or image file into plain text.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.MedianRadius <= 0 {
		cfg.MedianRadius = 2
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract pulls text from the file at path. explicitType may be
// constants.PDF or constants.IMAGE; when empty the format is inferred from
// the extension. Unsupported extensions fail with ErrUnsupportedFileType;
// everything else that goes wrong is wrapped in *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, path, explicitType string) (Result, error) {
	start := time.Now()

	format := explicitType
	if format == "" {
		format = constants.MapExtToFormat(filepath.Ext(path))
	}
	e.logger.Debug("extract.start", "path", path, "format", format)

	var res Result
	var err error
	switch format {
	case constants.PDF:
		res, err = e.extractPDF(path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	default:
		e.logger.Error("extract.unsupported", "path", path, "ext", filepath.Ext(path))
		return Result{}, ErrUnsupportedFileType
	}
	if err != nil {
		e.logger.Error("extract.failed", "path", path, "format", format, "error", err)
		return Result{}, &ExtractionError{Path: path, Cause: err}
	}

	res.Format = format
	res.Duration = time.Since(start)
	e.logger.Info("extract.ok",
		"path", path,
		"format", format,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
