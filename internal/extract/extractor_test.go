package extract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushan1140/invoice-po-matcher/constants"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	name string
	args []string
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	return r.stdout, r.stderr, r.err
}

func testExtractor(runner Runner) *Extractor {
	e := NewExtractor(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = runner
	return e
}

// writeTestScan saves a small synthetic invoice-like image and returns its path.
func writeTestScan(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetGray(x, y, color.Gray{Y: 230})
		}
	}
	for x := 10; x < 30; x++ {
		img.SetGray(x, 20, color.Gray{Y: 10})
	}
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e := testExtractor(&stubRunner{})

	_, err := e.Extract(context.Background(), "/tmp/invoice.docx", "")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestExtractImageRunsTesseract(t *testing.T) {
	runner := &stubRunner{stdout: []byte("Invoice Number: INV-2024-100\n")}
	e := testExtractor(runner)

	res, err := e.Extract(context.Background(), writeTestScan(t), "")
	require.NoError(t, err)
	assert.Equal(t, "Invoice Number: INV-2024-100\n", res.Text)
	assert.Equal(t, constants.IMAGE, res.Format)
	assert.Equal(t, 1, res.Pages)

	assert.Equal(t, "tesseract", runner.name)
	require.GreaterOrEqual(t, len(runner.args), 6)
	assert.Equal(t, "stdout", runner.args[1])
	assert.Contains(t, runner.args, "-l")
	assert.Contains(t, runner.args, "eng")
	assert.Contains(t, runner.args, "--psm")
	assert.Contains(t, runner.args, "6")
}

func TestExtractExplicitTypeOverridesExtension(t *testing.T) {
	runner := &stubRunner{stdout: []byte("ok")}
	e := testExtractor(runner)

	// An unknown extension still OCRs when the caller names the format.
	path := writeTestScan(t)
	res, err := e.Extract(context.Background(), path, constants.IMAGE)
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, res.Format)
}

func TestExtractWrapsOCRFailure(t *testing.T) {
	ocrErr := errors.New("exit status 1")
	e := testExtractor(&stubRunner{stderr: []byte("could not initialize tesseract"), err: ocrErr})

	_, err := e.Extract(context.Background(), writeTestScan(t), "")
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.ErrorIs(t, err, ocrErr)
}

func TestExtractWrapsUnreadableImage(t *testing.T) {
	e := testExtractor(&stubRunner{})

	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.png"), "")
	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}

func TestTessdataDirFlag(t *testing.T) {
	runner := &stubRunner{stdout: []byte("ok")}
	e := NewExtractor(Config{TessdataDir: "/opt/tessdata"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = runner

	_, err := e.Extract(context.Background(), writeTestScan(t), "")
	require.NoError(t, err)
	assert.Contains(t, runner.args, "--tessdata-dir")
	assert.Contains(t, runner.args, "/opt/tessdata")
}
