package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword хэширует пароль с использованием bcrypt.
func HashPassword(password string) (string, error) {
	return hashPasswordCost(password, bcrypt.DefaultCost)
}

// ComparePassword сравнивает хэш с паролем через bcrypt.
func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func hashPasswordCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
