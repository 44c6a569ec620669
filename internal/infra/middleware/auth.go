package middleware

import (
	"errors"
	"strings"

	apperrors "github.com/diillson/mock-api-server/pkg/errors"
	"github.com/diillson/mock-api-server/pkg/security"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClaimsKey é a chave do gin.Context onde as claims validadas ficam disponíveis
const ClaimsKey = "claims"

// AuthMiddleware protege a API de gerenciamento com tokens JWT
type AuthMiddleware struct {
	keyManager *security.KeyManager
	logger     *zap.Logger
}

// NewAuthMiddleware cria uma nova instância do middleware de autenticação
func NewAuthMiddleware(keyManager *security.KeyManager, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		keyManager: keyManager,
		logger:     logger,
	}
}

// AuthenticateAdmin verifica se o token pertence a um administrador
func (m *AuthMiddleware) AuthenticateAdmin(c *gin.Context) {
	claims, ok := m.verify(c)
	if !ok {
		return
	}
	if claims.Role != security.RoleAdmin {
		abortWithError(c, apperrors.Forbidden("Acesso negado: permissão de administrador necessária", nil))
		return
	}
	c.Next()
}

// verify valida o cabeçalho Authorization e guarda as claims no contexto.
// Em caso de falha a requisição já foi abortada.
func (m *AuthMiddleware) verify(c *gin.Context) (*security.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abortWithError(c, apperrors.Unauthorized("Authorization header não fornecido", nil))
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		abortWithError(c, apperrors.Unauthorized("Formato inválido do token", nil))
		return nil, false
	}

	claims, err := m.keyManager.VerifyToken(tokenString)
	if err != nil {
		message := "Token inválido"
		if errors.Is(err, security.ErrTokenExpired) {
			message = "Token expirado"
		}
		m.logger.Debug("token rejeitado", zap.String("path", c.Request.URL.Path), zap.Error(err))
		abortWithError(c, apperrors.Unauthorized(message, err))
		return nil, false
	}

	c.Set(ClaimsKey, claims)
	return claims, true
}

func abortWithError(c *gin.Context, err *apperrors.APIError) {
	c.AbortWithStatusJSON(err.Code, err)
}
