package security

import "golang.org/x/crypto/bcrypt"

// HashAccessCode hashes an access code for storage
func HashAccessCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAccessCode compares an access code against its stored hash
func CheckAccessCode(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
