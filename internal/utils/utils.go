package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashToken gera o hash bcrypt de um token de integração (ex.: X-Cron-Token).
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(hash), err
}

// ConferirToken compara o hash bcrypt com o token recebido.
// Hash vazio nunca confere.
func ConferirToken(hash, token string) bool {
	if strings.TrimSpace(hash) == "" || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
