package user

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

// passwordCharset is the fixed alphabet for generated credentials.
const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"

// DefaultPasswordLength is used when no length is configured.
const DefaultPasswordLength = 10

// GeneratePassword returns a random credential of the given length drawn from
// passwordCharset. The caller displays it once; it is never stored.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = DefaultPasswordLength
	}

	max := big.NewInt(int64(len(passwordCharset)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "reading random bytes")
		}
		buf[i] = passwordCharset[n.Int64()]
	}
	return string(buf), nil
}
