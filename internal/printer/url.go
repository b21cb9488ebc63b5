package printer

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// StatusPath is the usage document served by the printer's embedded web server.
const StatusPath = "/DevMgmt/ProductUsageDyn.xml"

// NormalizeURL turns a hostname, IP or partial URL into the full status
// document URL. It never touches the network.
func NormalizeURL(raw string) (string, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", fmt.Errorf("%w: printer address is empty", ErrInvalidInput)
	}
	for _, r := range input {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`<>"{}|\^`+"`", r) {
			return "", fmt.Errorf("%w: printer address %q contains %q", ErrInvalidInput, raw, r)
		}
	}

	var endpoint string
	switch {
	case strings.Contains(input, StatusPath):
		endpoint = withScheme(input)
	default:
		endpoint = strings.TrimRight(withScheme(input), "/") + StatusPath
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: printer address %q has no host", ErrInvalidInput, raw)
	}
	return endpoint, nil
}

func withScheme(input string) string {
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return input
	}
	return "http://" + input
}
