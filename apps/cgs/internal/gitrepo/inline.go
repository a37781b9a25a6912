package gitrepo

import (
	"encoding/base64"
	"fmt"
	"strings"
)

var lineBreaks = strings.NewReplacer("\n", "", "\r", "")

// Decode returns the file's raw bytes. Embedded line breaks are stripped
// before base64 decoding.
func (f *InlineFile) Decode() ([]byte, error) {
	if f.Encoding != EncodingBase64 {
		return nil, fmt.Errorf("unsupported content encoding %q for %s", f.Encoding, f.Name)
	}
	decoded, err := base64.StdEncoding.DecodeString(lineBreaks.Replace(f.Content))
	if err != nil {
		return nil, fmt.Errorf("decode base64 content for %s: %w", f.Name, err)
	}
	return decoded, nil
}
