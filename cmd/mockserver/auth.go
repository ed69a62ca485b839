package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// jwtManager 는 HS256 단일 시크릿으로 액세스/리프레시 토큰 쌍을 발급한다.
type jwtManager struct {
	secret []byte
	issuer string
}

// newJWTManagerFromEnv 는 환경변수에서 시크릿을 읽는다.
//
// - MOCK_JWT_SECRET: 서명 시크릿 (선택, 기본값은 개발용 고정 문자열)
func newJWTManagerFromEnv() *jwtManager {
	secret := os.Getenv("MOCK_JWT_SECRET")
	if secret == "" {
		secret = "mazad-mock-secret"
	}
	return &jwtManager{secret: []byte(secret), issuer: "mazad-mock"}
}

func (m *jwtManager) sign(userID, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iss":  m.issuer,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// signPair issues the access/refresh token pair handed out at sign-in.
func (m *jwtManager) signPair(userID, role string) (access, refresh string, err error) {
	access, err = m.sign(userID, role, time.Hour)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.sign(userID, role, 7*24*time.Hour)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *jwtManager) parse(tokenString string) (userID, role string, err error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", "", fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	r, _ := claims["role"].(string)
	if sub == "" {
		return "", "", fmt.Errorf("token missing sub claim")
	}
	return sub, r, nil
}

// requireAuth 는 Bearer 토큰을 검증하고 사용자 id/역할을 컨텍스트에 싣는다.
func requireAuth(jwtMgr *jwtManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "missing bearer token",
			})
			return
		}
		userID, role, err := jwtMgr.parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}
		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}
