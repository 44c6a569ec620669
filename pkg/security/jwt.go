package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// RoleAdmin é o papel exigido pela API de gerenciamento de rotas
const RoleAdmin = "admin"

// MinSecretLength é o tamanho mínimo do segredo HMAC
const MinSecretLength = 32

var (
	ErrSecretTooShort = errors.New("jwt secret key muito curta")
	ErrTokenExpired   = errors.New("token expirado")
	ErrTokenInvalid   = errors.New("token inválido")
)

// Claims são as declarações dos tokens de administração
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// KeyManager emite e valida tokens HS256
type KeyManager struct {
	secretKey []byte
	issuer    string
	audience  string
	logger    *zap.Logger
}

// NewKeyManager cria um KeyManager; issuer e audience vazios não são verificados
func NewKeyManager(secretKey []byte, issuer, audience string, logger *zap.Logger) (*KeyManager, error) {
	if len(secretKey) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &KeyManager{
		secretKey: secretKey,
		issuer:    issuer,
		audience:  audience,
		logger:    logger,
	}, nil
}

// GenerateToken emite um token para o sujeito com o papel informado
func (km *KeyManager) GenerateToken(subject, role string, duration time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    km.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if km.audience != "" {
		claims.Audience = jwt.ClaimStrings{km.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(km.secretKey)
	if err != nil {
		km.logger.Error("falha ao gerar token JWT", zap.Error(err))
		return "", err
	}

	return tokenString, nil
}

// VerifyToken valida assinatura, validade, emissor e audiência do token
func (km *KeyManager) VerifyToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if km.issuer != "" {
		opts = append(opts, jwt.WithIssuer(km.issuer))
	}
	if km.audience != "" {
		opts = append(opts, jwt.WithAudience(km.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return km.secretKey, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		km.logger.Debug("falha ao validar token JWT", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}
