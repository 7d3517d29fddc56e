package utils

import (
	"fmt"
	"net/url"
)

// RedactDBURL strips the password from a connection string so it can be logged.
func RedactDBURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid DB URL: %w", err)
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String(), nil
}
