// Package userkey builds storage keys scoped to a single user identity.
package userkey

// Sanitize maps an identifier (normally an email) onto the charset allowed
// in storage keys. Every byte outside [A-Za-z0-9._-] becomes '_'. The
// function is idempotent, so already-sanitized keys pass through unchanged.
// Two identifiers that differ only in disallowed characters collide; stored
// data for existing users depends on this exact mapping.
func Sanitize(raw string) string {
	out := []byte(raw)
	for i := 0; i < len(out); i++ {
		b := out[i]
		switch {
		case b >= 'a' && b <= 'z':
		case b >= 'A' && b <= 'Z':
		case b >= '0' && b <= '9':
		case b == '.' || b == '_' || b == '-':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// ForUser appends the sanitized identifier to a key prefix.
func ForUser(prefix, email string) string {
	return prefix + Sanitize(email)
}
