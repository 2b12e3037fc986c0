package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SecretMiddleware аутентифицирует служебные запросы бота и админки
// общим секретом в заголовке x-app-secret.
type SecretMiddleware struct {
	appSecret string
}

// NewSecretMiddleware создает middleware проверки секрета
func NewSecretMiddleware(appSecret string) *SecretMiddleware {
	return &SecretMiddleware{appSecret: appSecret}
}

// RequireSecret проверяет заголовок x-app-secret. Сравнение в
// константное время.
func (m *SecretMiddleware) RequireSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("x-app-secret")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(m.appSecret)) != 1 {
			log.Printf("[SecretMiddleware] Отклонен запрос %s %s с неверным секретом (IP=%s)",
				c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
