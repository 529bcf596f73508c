package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	// tiff and bmp uploads decode through x/image.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// extractImage preprocesses the scan (grayscale, median blur, Otsu
// threshold), writes the binarized page to a temp PNG, and OCRs it with a
// segmentation mode tuned for a single uniform text block.
func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	prepped := preprocess(src, e.cfg.MedianRadius)

	tmpDir, err := os.MkdirTemp(e.cfg.ArtifactDir, "ipm-ocr-*")
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(tmpDir)

	prepPath := filepath.Join(tmpDir, "page.png")
	if err := imaging.Save(prepped, prepPath); err != nil {
		return Result{}, fmt.Errorf("write preprocessed image: %w", err)
	}

	text, err := e.tesseractOCR(ctx, prepPath)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Pages: 1}, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang, "--psm", fmt.Sprintf("%d", e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang> --psm <n>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
