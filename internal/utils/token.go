package utils

import "crypto/rand"

const (
	// VerificationTokenLength matches the 32-character tokens embedded in
	// verification links.
	VerificationTokenLength = 32

	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateVerificationToken returns a crypto-random opaque token used to
// prove control of a registered email address. Bytes outside the alphabet
// mask range are discarded so the distribution stays uniform.
func GenerateVerificationToken() (string, error) {
	const mask = 63 // alphabet has 62 entries; mask covers 0..63

	id := make([]byte, VerificationTokenLength)
	buf := make([]byte, VerificationTokenLength*2)

	for pos := 0; pos < VerificationTokenLength; {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i := 0; i < len(buf) && pos < VerificationTokenLength; i++ {
			idx := buf[i] & mask
			if int(idx) < len(tokenAlphabet) {
				id[pos] = tokenAlphabet[idx]
				pos++
			}
		}
	}
	return string(id), nil
}
