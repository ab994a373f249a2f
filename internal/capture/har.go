package capture

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chromedp/cdproto/har"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

// Ext is the file extension of capture files.
const Ext = ".har"

// ReadFile loads a whole HAR capture from disk.
func ReadFile(path string) (*har.HAR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	return Decode(data)
}

// Decode parses a HAR document. A document without a log section is
// rejected.
func Decode(data []byte) (*har.HAR, error) {
	var h har.HAR
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: decode capture: %v", model.ErrParse, err)
	}
	if h.Log == nil {
		return nil, fmt.Errorf("%w: capture has no log section", model.ErrParse)
	}
	return &h, nil
}

// responseText returns the recorded response body of an entry, or "".
func responseText(e *har.Entry) string {
	if e == nil || e.Response == nil || e.Response.Content == nil {
		return ""
	}
	return e.Response.Content.Text
}
