package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextUserKey は、ハンドラー間で認証済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

// UserFromContext はリクエストコンテキストから認証済みユーザー名を取り出します。
func UserFromContext(c *gin.Context) (string, bool) {
	username := c.GetString(ContextUserKey)
	return username, username != ""
}

// RequireToken はセッションに紐付いたトークンを検証するミドルウェアを返します。
// レビューの変更系エンドポイントはすべてこのミドルウェアを通す必要があります。
// 読み取り専用エンドポイントには適用しません。
func (m *Manager) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 後続ハンドラーはこの関数の正常リターン後に実行されるため、
		// この recover が受け持つのはゲート自身の想定外の失敗のみ。
		defer func() {
			if r := recover(); r != nil {
				log.Printf("auth middleware panic: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Authentication error",
				})
			}
		}()

		sessionID, ok := currentSessionID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Unauthorized: no access token in session",
			})
			return
		}

		authz, ok := m.binder.Lookup(sessionID)
		if !ok || authz.AccessToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Unauthorized: no access token in session",
			})
			return
		}

		username, err := m.issuer.Verify(authz.AccessToken)
		if err != nil {
			if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Unauthorized: invalid or expired token",
				})
				return
			}
			log.Printf("token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Authentication error",
			})
			return
		}

		c.Set(ContextUserKey, username)
	}
}
