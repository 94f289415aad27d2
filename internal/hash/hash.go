package hash

import "golang.org/x/crypto/bcrypt"

// Cost stays at the bcrypt default. Raising it multiplies CPU time per
// login and can starve request handlers.
const cost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether password matches hash. A mismatch is a
// plain false, never an error.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
