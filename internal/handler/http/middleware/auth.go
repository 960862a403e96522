package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/workpulse/hr-backend-go/internal/handler/http/response"
)

var errInvalidToken = errors.New("invalid or missing token")

// AuthRequired rejects requests whose token is missing, invalid or not an
// access token.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, errInvalidToken.Error())
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, errInvalidToken.Error())
				return
			}
			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != "access" {
				response.Unauthorized(w, errInvalidToken.Error())
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// EmployeeID extracts the employee_id claim from the verified token.
func EmployeeID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", err
	}
	id, ok := claims["employee_id"].(string)
	if !ok || id == "" {
		return "", errInvalidToken
	}
	return id, nil
}

// UserID extracts the user_id claim from the verified token.
func UserID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", err
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errInvalidToken
	}
	return id, nil
}
