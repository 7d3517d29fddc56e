package utils

import (
	"net"
	"net/http"
	"strings"
)

// BearerToken returns the credential of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

// ClientIP extracts the best IP address from typical proxy headers or RemoteAddr.
func ClientIP(r *http.Request) string {
	forwardedFor := r.Header.Get("X-Forwarded-For")
	if forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		for _, ip := range ips {
			cleanIP := strings.TrimSpace(ip)
			if isValidIP(cleanIP) {
				return cleanIP
			}
		}
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" && isValidIP(realIP) {
		return realIP
	}

	forwarded := r.Header.Get("Forwarded")
	if forwarded != "" {
		parts := strings.Split(forwarded, ";")
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, "for=") {
				maybeIP := strings.TrimPrefix(part, "for=")
				maybeIP = strings.Trim(maybeIP, "\"")
				if isValidIP(maybeIP) {
					return maybeIP
				}
			}
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
