package order

import (
	"crypto/rand"
	"math/big"
)

// orderNoAlphabet is A-Z and 2-9 without the look-alikes 0, O, 1 and I.
const (
	orderNoAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	orderNoLength   = 5
)

func randomOrderNo() (string, error) {
	max := big.NewInt(int64(len(orderNoAlphabet)))
	b := make([]byte, orderNoLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = orderNoAlphabet[n.Int64()]
	}
	return string(b), nil
}
