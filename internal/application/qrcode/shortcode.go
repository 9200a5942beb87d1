package qrcode

import (
	"crypto/rand"
	"math/big"
)

const shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// shortCodePlan is the sequence of (length, attempts) tried before giving up.
var shortCodePlan = []struct {
	length   int
	attempts int
}{
	{length: 7, attempts: 5},
	{length: 10, attempts: 3},
}

var alphabetSize = big.NewInt(int64(len(shortCodeAlphabet)))

func generateShortCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = shortCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
