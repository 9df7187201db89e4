package security

import (
	"errors"
	"strings"
	"testing"
)

func TestRandomString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		length   int
		alphabet string
		wantErr  error
	}{
		{name: "negative length", length: -1, alphabet: "abc", wantErr: errNegativeLength},
		{name: "empty alphabet", length: 1, alphabet: "", wantErr: errAlphabetSize},
		{name: "oversized alphabet", length: 1, alphabet: strings.Repeat("a", 257), wantErr: errAlphabetSize},
		{name: "zero length", length: 0, alphabet: "abc"},
		{name: "single symbol", length: 8, alphabet: "X"},
		{name: "temporary password alphabet", length: 64, alphabet: TemporaryPasswordAlphabet},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := RandomString(test.length, test.alphabet)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("RandomString(%d) error = %v, want %v", test.length, err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RandomString(%d) returned error: %v", test.length, err)
			}
			if len(got) != test.length {
				t.Fatalf("RandomString(%d) len = %d", test.length, len(got))
			}
			for _, char := range got {
				if !strings.ContainsRune(test.alphabet, char) {
					t.Fatalf("RandomString(%d) produced %q outside alphabet", test.length, char)
				}
			}
		})
	}
}
