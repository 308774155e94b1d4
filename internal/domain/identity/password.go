package identity

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTempPasswordLength is used when no length is configured
	DefaultTempPasswordLength = 12
	minTempPasswordLength     = 8

	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars  = "23456789"
	symbolChars = "!@#$%*?"
)

// GenerateTemporaryPassword returns a random password containing at least one
// lower-case letter, upper-case letter, digit and symbol. Look-alike characters
// (0/O, 1/l/I) are excluded so the password can be read out loud.
func GenerateTemporaryPassword(length int) (string, error) {
	if length < minTempPasswordLength {
		length = minTempPasswordLength
	}
	all := lowerChars + upperChars + digitChars + symbolChars

	buf := make([]byte, 0, length)
	for _, set := range []string{lowerChars, upperChars, digitChars, symbolChars} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < length {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	// Fisher-Yates so the required classes are not always in front
	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		k := j.Int64()
		buf[i], buf[k] = buf[k], buf[i]
	}
	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}

// HashPassword hashes a password with bcrypt at the given cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a password against a bcrypt hash
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
