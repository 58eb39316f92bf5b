package media

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errBadDataURI = errors.New("malformed data URI")

// IsDataURI reports whether s looks like an inline base64 payload.
func IsDataURI(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:")
}

// decodeDataURI splits a "data:<mime>;base64,<payload>" string into its media
// type and decoded bytes.
func decodeDataURI(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", nil, errBadDataURI
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, errBadDataURI
	}
	mime, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return "", nil, errBadDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errBadDataURI
	}
	return mime, data, nil
}
