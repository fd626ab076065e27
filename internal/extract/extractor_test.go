package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntorreslo/ndf-letters/constants"
	"github.com/ntorreslo/ndf-letters/internal/common"
)

// stubRunner scripts the external binaries. When asked to rasterize it
// creates the page images pdftoppm would have written.
type stubRunner struct {
	pdftotextOut string
	pdftotextErr error
	ocrPages     []string
	tesseractErr error
	calls        [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	switch name {
	case "pdftotext":
		if s.pdftotextErr != nil {
			return nil, []byte("boom"), s.pdftotextErr
		}
		return []byte(s.pdftotextOut), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := range s.ocrPages {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i+1), []byte{0x89}, 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		if s.tesseractErr != nil {
			return nil, []byte("recognition failed"), s.tesseractErr
		}
		// args[0] is the page image: .../page-N.png
		img := args[0]
		var n int
		if _, err := fmt.Sscanf(img[strings.LastIndex(img, "-")+1:], "%d.png", &n); err != nil {
			return nil, nil, err
		}
		return []byte(s.ocrPages[n-1]), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected binary %q", name)
}

func newTestExtractor(r Runner) *Extractor {
	e := NewExtractor(Config{}, nil)
	e.runner = r
	return e
}

func TestExtractDirectReadsConfiguredPage(t *testing.T) {
	stub := &stubRunner{pdftotextOut: "FORWARD CONFIRMATION\nStrike 4236,20\n"}
	e := newTestExtractor(stub)

	res, err := e.Extract(context.Background(), "/in/Confirmation-AE1.pdf",
		constants.StrategyFor(constants.JPMorgan))
	require.NoError(t, err)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Contains(t, res.Text, "Strike 4236,20")

	require.Len(t, stub.calls, 1)
	call := strings.Join(stub.calls[0], " ")
	// JPMorgan letters carry the terms on the second page.
	assert.Contains(t, call, "-f 2 -l 2")
}

func TestExtractDirectEmptyLayerFallsBackToOCR(t *testing.T) {
	stub := &stubRunner{pdftotextOut: " \n\f \n", ocrPages: []string{"BANCO SANTANDER\n", "Tasa 4100,00\n"}}
	e := newTestExtractor(stub)

	res, err := e.Extract(context.Background(), "/in/carta.pdf", constants.DefaultStrategy)
	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "BANCO SANTANDER\nTasa 4100,00\n", res.Text)
	assert.Contains(t, res.Warnings, "empty text layer")
}

func TestExtractOpticalConcatenatesPagesInOrder(t *testing.T) {
	stub := &stubRunner{ocrPages: []string{"page one ", "page two ", "page three"}}
	e := newTestExtractor(stub)

	res, err := e.Extract(context.Background(), "/in/1234567.pdf",
		constants.StrategyFor(constants.Scotiabank))
	require.NoError(t, err)
	assert.Equal(t, "page one page two page three", res.Text)
	assert.Equal(t, 3, res.Pages)

	// Scotiabank scans are dense; the table pins 400 DPI.
	call := strings.Join(stub.calls[0], " ")
	assert.Contains(t, call, "-r 400")
	// Bilingual symbol set on every page.
	for _, c := range stub.calls[1:] {
		assert.Contains(t, strings.Join(c, " "), "-l eng+spa")
	}
}

func TestExtractOpticalNoTextRecognizedIsDocumentIO(t *testing.T) {
	// Pages render but tesseract fails on every one of them.
	stub := &stubRunner{ocrPages: []string{"", ""}, tesseractErr: errors.New("exit status 1")}
	e := newTestExtractor(stub)

	_, err := e.Extract(context.Background(), "/in/1234567.pdf",
		constants.StrategyFor(constants.Scotiabank))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentIO))
}

func TestExtractDirectFailureIsDocumentIO(t *testing.T) {
	stub := &stubRunner{pdftotextErr: errors.New("exit status 1")}
	e := newTestExtractor(stub)

	_, err := e.Extract(context.Background(), "/in/bad.pdf", constants.DefaultStrategy)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentIO))
}

func TestExtractEncryptedWithoutPassphrase(t *testing.T) {
	e := newTestExtractor(&stubRunner{})

	_, err := e.Extract(context.Background(), "/in/2025-07-24_COLOMBIA TELECO.pdf",
		constants.StrategyFor(constants.Bancolombia))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentIO))
}
