package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims da sessão emitida pelo provedor de autenticação.
type Claims struct {
	Nome  string `json:"name,omitempty"`
	Papel string `json:"role"`
	jwt.RegisteredClaims
}

// Verificador valida tokens HS256 emitidos pelo provedor externo.
type Verificador struct {
	secret []byte
	issuer string
}

func NewVerificador(secret, issuer string) *Verificador {
	return &Verificador{secret: []byte(secret), issuer: issuer}
}

// GerarToken emite um token de sessão; usado por integrações internas e testes.
func (v *Verificador) GerarToken(sub, nome string, papel Papel, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Nome:  nome,
		Papel: string(papel),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Validar confere assinatura, expiração, emissor e papel.
func (v *Verificador) Validar(raw string) (*Usuario, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("token inválido ou expirado: %w", err)
	}
	if !tok.Valid {
		return nil, errors.New("token inválido")
	}
	if claims.Subject == "" {
		return nil, errors.New("token sem sub")
	}
	papel, ok := NormalizarPapel(claims.Papel)
	if !ok {
		return nil, fmt.Errorf("papel desconhecido: %q", claims.Papel)
	}
	return &Usuario{ID: claims.Subject, Nome: claims.Nome, Papel: papel}, nil
}
