// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/SK2805/book-reviews/internal/auth"
	"github.com/SK2805/book-reviews/internal/catalog"
	"github.com/SK2805/book-reviews/internal/config"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	router := newRouter(cfg)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newRouter はルーターと全依存の配線を行います。テストからも利用します。
func newRouter(cfg *config.Config) *gin.Engine {
	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// セッションストアの設定（Cookieにはセッション識別子のみを保存する）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	// 依存の組み立て
	credentials := auth.NewCredentialStore()
	issuer := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	binder := auth.NewSessionBinder()
	authManager := auth.NewManager(credentials, issuer, binder)
	books := catalog.NewStore(catalog.SeedBooks())

	setupRoutes(router, authManager, books)

	return router
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "book-reviews-api",
		"version": "0.1.0",
	})
}

// setupRoutes は公開ルートと認証必須ルートの配線を行います。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, books *catalog.Store) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	// ユーザー登録とログイン
	router.POST("/register", authManager.Register)
	router.POST("/login", authManager.Login)

	// カタログの参照（認証不要）
	router.GET("/", catalog.ListHandler(books))
	router.GET("/isbn/:isbn", catalog.BookByISBNHandler(books))
	router.GET("/author/:author", catalog.BooksByAuthorHandler(books))
	router.GET("/title/:title", catalog.BooksByTitleHandler(books))
	router.GET("/review/:isbn", catalog.ReviewsHandler(books))

	// レビューの変更系はすべてトークン検証を通す
	protected := router.Group("/auth")
	protected.Use(authManager.RequireToken())
	{
		protected.PUT("/review/:isbn", catalog.UpsertReviewHandler(books))
		protected.DELETE("/review/:isbn", catalog.DeleteReviewHandler(books))
	}
}
