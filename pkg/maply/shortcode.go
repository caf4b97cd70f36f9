package maply

import "math/rand/v2"

const (
	lowerAlphabet = "abcdefghijklmnopqrstuvwxyz"
	codeAlphabet  = lowerAlphabet + "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLen       = 5
)

// ShortCode returns a random 5 character token over [a-zA-Z0-9]. With
// firstLowercase the first character is drawn from [a-z] only, which makes
// the token a valid JavaScript identifier. Tokens are not unique.
func ShortCode(firstLowercase bool) string {
	var b [codeLen]byte
	for i := range b {
		if i == 0 && firstLowercase {
			b[i] = lowerAlphabet[rand.IntN(len(lowerAlphabet))]
			continue
		}
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b[:])
}
