package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"code.sajari.com/docconv"

	"github.com/lexmill99/studycoach/internal/core"
)

var _ core.PDFExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.PDFExtractor using sajari/docconv.
type DocconvExtractor struct{}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

// ExtractText converts PDF bytes to plain text. Extraction failures map to
// ErrUnreadablePDF so the handler can answer with a 400.
func (e *DocconvExtractor) ExtractText(ctx context.Context, fileBytes []byte) (string, error) {
	if len(fileBytes) == 0 {
		return "", fmt.Errorf("%w: empty file", core.ErrUnreadablePDF)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := docconv.Convert(bytes.NewReader(fileBytes), "application/pdf", false)
	if err != nil {
		log.Printf("docconv: extraction failed: %v", err)
		return "", fmt.Errorf("%w: %v", core.ErrUnreadablePDF, err)
	}
	return res.Body, nil
}
