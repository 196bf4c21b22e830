package security

import "golang.org/x/crypto/bcrypt"

// HashPassword возвращает bcrypt-хэш пароля.
// Открытым текстом пароли нигде не хранятся и не сравниваются
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
