package notify

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfcpu otherwise materializes a configuration directory under $HOME.
var disableConfigDir = sync.OnceFunc(api.DisableConfigDir)

// pdfFromPNG wraps a single PNG image in a one-page PDF document.
func pdfFromPNG(img []byte) ([]byte, error) {
	disableConfigDir()

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(img)}, nil, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}
