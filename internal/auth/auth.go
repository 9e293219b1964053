package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/cmd/config"
	"github.com/sol1corejz/trailerent/internal/domain"
)

const TokenExp = time.Hour * 24

func GenerateToken(userID uuid.UUID) (string, error) {
	return generate(userID, "user")
}

func GenerateAdminToken(adminID uuid.UUID) (string, error) {
	return generate(adminID, "admin")
}

func generate(id uuid.UUID, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": id.String(),
		"role":   role,
		"exp":    time.Now().Add(TokenExp).Unix(),
	})
	return token.SignedString([]byte(config.JWTSecret))
}

func parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.AuthError{Msg: "unexpected signing method"}
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.AuthError{Msg: "invalid or expired token", Err: err}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.AuthError{Msg: "invalid token claims"}
	}
	return claims, nil
}

func GetUserID(tokenString string) (uuid.UUID, error) {
	claims, err := parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}

	raw, ok := claims["userID"].(string)
	if !ok {
		return uuid.Nil, domain.AuthError{Msg: "token has no userID"}
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.AuthError{Msg: "token userID is not a uuid", Err: err}
	}
	return userID, nil
}

func IsAdmin(tokenString string) bool {
	claims, err := parse(tokenString)
	if err != nil {
		return false
	}
	role, _ := claims["role"].(string)
	return role == "admin"
}
