package respond

import (
	"regexp"
)

var (
	// urlCredentialPattern matches user:password credentials embedded in a
	// URL, which is how both the postgres DSN and authenticated feed URLs
	// surface in driver and fetcher errors.
	urlCredentialPattern = regexp.MustCompile(`://([^:/?#\s]+):([^@\s]+)@`)

	// dsnPasswordPattern matches the password field of a key/value postgres
	// DSN ("host=... password=... dbname=...").
	dsnPasswordPattern = regexp.MustCompile(`(?i)\bpassword=[^\s]+`)
)

// SanitizeError masks credentials in an error message so it can be logged.
// It never changes what the client sees; SafeError already replaces unsafe
// messages before responding.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = urlCredentialPattern.ReplaceAllString(msg, "://$1:****@")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "password=****")
	return msg
}
