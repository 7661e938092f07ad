package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/willjrcristo/moneyquest-api/internal/service"
)

// Claims dos tokens de acesso: sub é o id do perfil.
type Claims struct {
	UserRole string `json:"user_role,omitempty"`
	jwt.RegisteredClaims
}

type authInfo struct {
	UserID uuid.UUID
	Role   string
}

type authKey struct{}

func authFrom(ctx context.Context) (authInfo, bool) {
	a, ok := ctx.Value(authKey{}).(authInfo)
	return a, ok
}

// ParseToken valida um token HS256 e devolve o id do perfil e o papel.
func ParseToken(tokenString, secret string) (uuid.UUID, string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, "", err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, claims.UserRole, nil
}

// OptionalAuth aceita requisições sem token (visitante). Um token presente,
// porém inválido, é rejeitado com 401.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondWithError(w, http.StatusUnauthorized, "Formato do cabeçalho Authorization inválido")
				return
			}

			id, role, err := ParseToken(parts[1], secret)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), authKey{}, authInfo{UserID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth exige usuário autenticado.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authFrom(r.Context()); !ok {
			respondWithError(w, http.StatusUnauthorized, "Autenticação obrigatória")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin exige o papel "admin" no token.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := authFrom(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Autenticação obrigatória")
			return
		}
		if a.Role != "admin" {
			respondWithError(w, http.StatusForbidden, "Acesso restrito a administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware monta a Session da requisição e a coloca no contexto.
func SessionMiddleware(loader SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID *uuid.UUID
			if a, ok := authFrom(r.Context()); ok {
				userID = &a.UserID
			}
			s := loader.Load(r.Context(), userID, r.Header.Get(TimezoneHeader))
			next.ServeHTTP(w, r.WithContext(service.WithSession(r.Context(), s)))
		})
	}
}
