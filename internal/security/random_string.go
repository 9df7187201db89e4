package security

import (
	"crypto/rand"
	"errors"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errAlphabetSize   = errors.New("alphabet must hold between 1 and 256 bytes")
)

// RandomString draws length bytes from alphabet using crypto/rand. Bytes at or
// above the largest multiple of len(alphabet) are rejected so every symbol is
// equally likely.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", errAlphabetSize
	}

	ceiling := 256 - 256%len(alphabet)
	value := make([]byte, 0, length)
	buffer := make([]byte, length*2)
	for len(value) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, sample := range buffer {
			if int(sample) >= ceiling {
				continue
			}
			value = append(value, alphabet[int(sample)%len(alphabet)])
			if len(value) == length {
				break
			}
		}
	}
	return string(value), nil
}
