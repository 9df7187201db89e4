package security

// TemporaryPasswordAlphabet leaves out characters that are easy to misread
// (0, O, 1, I, l, o).
const TemporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

const TemporaryPasswordLength = 8

func TemporaryPassword() (string, error) {
	return RandomString(TemporaryPasswordLength, TemporaryPasswordAlphabet)
}
