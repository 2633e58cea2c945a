package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const responseIDLength = 21

// NewResponseID generates a fresh response identifier. Response identifiers
// are returned to the caller and can be presented back on a follow-up request
// to continue a conversation.
func NewResponseID() (string, error) {
	id, err := gonanoid.New(responseIDLength)
	if err != nil {
		return "", err
	}
	return "resp_" + id, nil
}

// IsNanoid reports whether s is a valid nanoid of the default length.
func IsNanoid(s string) bool {
	if len(s) != responseIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
