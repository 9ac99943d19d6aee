package geo

import (
	"regexp"
	"strings"

	"github.com/farm-geo-service/internal/domain"
)

var postalCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4,6}\b`),
	regexp.MustCompile(`\b\d{5}\s?\d{0,4}\b`),
	regexp.MustCompile(`(?i)\b[A-Z]{1,2}\d{1,2}[A-Z]?\s?\d[A-Z]{2}\b`),
}

func isPostalCode(part string) bool {
	for _, re := range postalCodePatterns {
		if re.MatchString(part) {
			return true
		}
	}
	return false
}

// FormatAddress укорачивает адрес Nominatim до сегмента с почтовым индексом включительно.
// Без индекса отбрасывает последний сегмент (страну).
func FormatAddress(full string) string {
	if full == "" || full == domain.AddressNotFound {
		return full
	}

	parts := strings.Split(full, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	for i, part := range parts {
		if isPostalCode(part) {
			return strings.Join(parts[:i+1], ", ")
		}
	}

	if trimmed := strings.Join(parts[:len(parts)-1], ", "); trimmed != "" {
		return trimmed
	}
	return full
}
