package utils

import "golang.org/x/crypto/bcrypt"

// HashPin returns a bcrypt hash of a student's PIN using the given cost.
func HashPin(pin string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPin safely compares a bcrypt hash and a plain PIN.
func VerifyPin(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
