package middleware

import (
	"github.com/gin-gonic/gin"

	"echoscript/internal/app/credential"
)

const (
	// APIKeyHeader carries the caller's Gemini credential
	APIKeyHeader = "X-API-Key"

	APIKeyKey    = "api_key"
	NamespaceKey = "namespace"
)

// RequireAPIKey rejects requests without a well-formed credential. The key
// itself is kept in the request context only; logs see the namespace.
func RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if err := credential.CheckFormat(key); err != nil {
			HandleError(c, err)
			return
		}

		c.Set(APIKeyKey, key)
		c.Set(NamespaceKey, credential.Namespace(key))
		c.Next()
	}
}

// APIKey returns the credential stored by RequireAPIKey
func APIKey(c *gin.Context) string {
	return c.GetString(APIKeyKey)
}
