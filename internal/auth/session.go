package auth

import (
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName はセッションCookieの名前です。
	SessionCookieName = "br_session"

	// Cookieセッションにはセッション識別子のみを保存する
	sessionKeyID = "session_id"
)

// Authorization はログイン時にセッションへ紐付けられる認可情報です。
// Username はトークン設定時点でトークンに埋め込まれた subject と常に一致します。
type Authorization struct {
	AccessToken string
	Username    string
}

// SessionBinder はセッション識別子から認可情報への対応をプロセス内メモリに保持します。
// Cookieの発行・回収はセッションミドルウェアの責務であり、この構造体は
// 識別子をキーとした参照のみを提供します。
type SessionBinder struct {
	mu       sync.RWMutex
	sessions map[string]Authorization
}

// NewSessionBinder は空の SessionBinder を作成します。
func NewSessionBinder() *SessionBinder {
	return &SessionBinder{
		sessions: make(map[string]Authorization),
	}
}

// Bind は認可情報をセッション識別子に紐付けます。既存の値は上書きされます。
func (b *SessionBinder) Bind(sessionID string, authz Authorization) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = authz
}

// Lookup はセッション識別子に紐付く認可情報を返します。
// 未ログインのセッションや未知の識別子に対しては ok=false を返します。
func (b *SessionBinder) Lookup(sessionID string) (Authorization, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	authz, ok := b.sessions[sessionID]
	return authz, ok
}

// ensureSessionID は現在のリクエストのセッション識別子を返します。
// 未発行の場合は新規に生成してCookieセッションへ保存します。
func ensureSessionID(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionKeyID).(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Set(sessionKeyID, id)
	if err := session.Save(); err != nil {
		return "", err
	}
	return id, nil
}

// currentSessionID は現在のリクエストのセッション識別子を返します。
// 新規発行は行いません。
func currentSessionID(c *gin.Context) (string, bool) {
	session := sessions.Default(c)
	id, ok := session.Get(sessionKeyID).(string)
	return id, ok && id != ""
}
