// Package privacy scrubs credentials and personal data from messages before
// they reach logs, the web page or error chains.
package privacy

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// URL pattern for finding URLs in text
	urlPattern = regexp.MustCompile(`\b(?:https?|smtps?|tcp|ssl|wss?|mqtts?|postgres(?:ql)?|mysql)://\S+`)

	// user:password@tcp(host:port) as used by the MySQL DSN format
	mysqlDSNPattern = regexp.MustCompile(`\b([^\s:@/]+):([^\s@]+)@tcp\(`)

	// password=... as used by the PostgreSQL keyword/value DSN format
	keywordPasswordPattern = regexp.MustCompile(`(?i)\b(password=)(\S+)`)

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

const redacted = "[REDACTED]"

// ScrubMessage removes credentials from a free-form message.
// URLs are replaced by an anonymized form, DSN passwords are redacted and
// email addresses are masked.
func ScrubMessage(message string) string {
	message = urlPattern.ReplaceAllStringFunc(message, AnonymizeURL)
	message = mysqlDSNPattern.ReplaceAllString(message, "$1:"+redacted+"@tcp(")
	message = keywordPasswordPattern.ReplaceAllString(message, "$1"+redacted)
	return emailPattern.ReplaceAllStringFunc(message, MaskEmail)
}

// AnonymizeURL converts a URL to a stable hash that keeps scheme, host class
// and port, but not credentials, host names or paths.
func AnonymizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		hash := sha256.Sum256([]byte(rawURL))
		return fmt.Sprintf("url-hash-%x", hash[:8])
	}

	var normalizedParts []string
	if parsedURL.Scheme != "" {
		normalizedParts = append(normalizedParts, parsedURL.Scheme)
	}
	if host := parsedURL.Hostname(); host != "" {
		normalizedParts = append(normalizedParts, categorizeHost(host))
	}
	if parsedURL.Port() != "" {
		normalizedParts = append(normalizedParts, "port-"+parsedURL.Port())
	}

	hash := sha256.Sum256([]byte(strings.Join(normalizedParts, ":")))
	return fmt.Sprintf("%s://url-%x", parsedURL.Scheme, hash[:12])
}

// RedactURL keeps a URL readable for logs but replaces its password and
// drops query parameters, which may carry addresses or tokens.
func RedactURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return redacted
	}
	if parsedURL.User != nil {
		if _, hasPassword := parsedURL.User.Password(); hasPassword {
			parsedURL.User = url.UserPassword(parsedURL.User.Username(), "xxxxx")
		}
	}
	parsedURL.RawQuery = ""
	return parsedURL.String()
}

// MaskEmail keeps the first character of the local part and the domain,
// e.g. "operator@example.com" becomes "o***@example.com".
func MaskEmail(address string) string {
	at := strings.LastIndex(address, "@")
	if at <= 0 {
		return redacted
	}
	return address[:1] + "***" + address[at:]
}

// categorizeHost anonymizes hostnames while preserving useful categorization
func categorizeHost(host string) string {
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return "localhost"
	}
	if isPrivateIP(host) {
		return "private-ip"
	}
	if ipv4Pattern.MatchString(host) || strings.Contains(host, ":") {
		return "public-ip"
	}

	// For domain names, preserve TLD only
	if parts := strings.Split(host, "."); len(parts) >= 2 {
		return "domain-" + parts[len(parts)-1]
	}
	return "unknown-host"
}

// isPrivateIP checks if the host is a private IP address (both IPv4 and IPv6)
func isPrivateIP(host string) bool {
	privateRanges := []string{
		"10.", "172.16.", "172.17.", "172.18.", "172.19.", "172.20.", "172.21.", "172.22.", "172.23.",
		"172.24.", "172.25.", "172.26.", "172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
		"192.168.", "169.254.",
		"fc00:", "fd00:", "fe80:",
	}

	host = strings.ToLower(host)
	for _, prefix := range privateRanges {
		if strings.HasPrefix(host, prefix) {
			return true
		}
	}
	return false
}
