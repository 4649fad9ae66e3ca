package ledger

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bakeryledger/backend/internal/apperror"
)

// HashCost is the bcrypt work factor for stored passwords.
var HashCost = bcrypt.DefaultCost

const minPasswordLength = 6

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func VerifyPassword(hash string, input string) bool {
	if hash == "" || input == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(input)) == nil
}

func IsPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func (b *Book) VerifyLoginPassword(input string) bool {
	return VerifyPassword(b.state.Credentials.LoginPasswordHash, input)
}

func (b *Book) VerifyOperationsPassword(input string) bool {
	return VerifyPassword(b.state.Credentials.OperationsPasswordHash, input)
}

// SetPasswords replaces the non-empty passwords. Callers confirm the current
// operations password first.
func (b *Book) SetPasswords(login, operations string) error {
	if login == "" && operations == "" {
		return apperror.NewValidation("no new password given")
	}
	for _, candidate := range []string{login, operations} {
		if candidate != "" && len(candidate) < minPasswordLength {
			return apperror.NewValidation("passwords need at least 6 characters")
		}
	}
	if login != "" {
		hash, err := HashPassword(login)
		if err != nil {
			return apperror.NewInternal(err)
		}
		b.state.Credentials.LoginPasswordHash = hash
	}
	if operations != "" {
		hash, err := HashPassword(operations)
		if err != nil {
			return apperror.NewInternal(err)
		}
		b.state.Credentials.OperationsPasswordHash = hash
	}
	return nil
}
