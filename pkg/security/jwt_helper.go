package security

import (
	"os"
)

// ResolveJWTSecret obtém o segredo JWT na seguinte ordem:
// 1. Variável de ambiente JWT_SECRET_KEY
// 2. Valor da configuração (auth.jwtSecret, também via MOCKAPI_AUTH_JWTSECRET)
func ResolveJWTSecret(configured string) []byte {
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		return []byte(secret)
	}
	if configured != "" {
		return []byte(configured)
	}
	return nil
}
