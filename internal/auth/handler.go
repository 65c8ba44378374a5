// Package auth は認証・認可機能を提供します。
package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	store  *CredentialStore
	issuer *TokenIssuer
	binder *SessionBinder
}

// NewManager は認証マネージャーを作成します。
func NewManager(store *CredentialStore, issuer *TokenIssuer, binder *SessionBinder) *Manager {
	return &Manager{
		store:  store,
		issuer: issuer,
		binder: binder,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register は POST /register のハンドラーです。
func (m *Manager) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "Username and password are required",
		})
		return
	}

	if err := m.store.Register(req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "Username and password are required",
			})
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{
				"code":    "USER_EXISTS",
				"message": "User already exists",
			})
		default:
			log.Printf("register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Registration failed",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
	})
}

// Login は POST /login のハンドラーです。
// 認証に成功するとトークンを発行し、セッションに認可情報を紐付けます。
// 同一セッションでの再ログインは紐付けを上書きします。
func (m *Manager) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "Username and password are required",
		})
		return
	}

	if !m.store.Authenticate(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "INVALID_CREDENTIALS",
			"message": "Invalid username or password",
		})
		return
	}

	token, err := m.issuer.Issue(req.Username)
	if err != nil {
		// 署名失敗は想定外の内部エラー。トークンそのものはログへ出さない。
		log.Printf("token issue failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Login failed",
		})
		return
	}

	sessionID, err := ensureSessionID(c)
	if err != nil {
		log.Printf("session save failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Login failed",
		})
		return
	}

	m.binder.Bind(sessionID, Authorization{
		AccessToken: token,
		Username:    req.Username,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "User successfully logged in",
		"token":   token,
	})
}
