package url

import (
	"fmt"
	"net/url"
	"strings"
)

// Sanitize normalizes a PDU location for use as a base URL: trailing and
// doubled slashes are collapsed and a missing scheme defaults to plain
// http, matching the unencrypted default of the bulk interface.
func Sanitize(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		uri = "http://" + uri
	}
	parsedURI, err := url.ParseRequestURI(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse URI: %w", err)
	}
	// Remove any trailing slashes
	parsedURI.Path = strings.TrimSuffix(parsedURI.Path, "/")
	// Collapse any doubled slashes
	parsedURI.Path = strings.ReplaceAll(parsedURI.Path, "//", "/")
	return parsedURI.String(), nil
}
