package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost is lowered in tests.
var bcryptCost = 12

// HashPassword hashes a given password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its hashed version.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SetBcryptCost overrides the hashing cost; use bcrypt.MinCost in tests.
func SetBcryptCost(cost int) {
	bcryptCost = cost
}
