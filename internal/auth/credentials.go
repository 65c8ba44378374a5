package auth

import (
	"errors"
	"sync"
)

var (
	// ErrMissingCredentials はユーザー名またはパスワードが空の場合に返されます。
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrUserExists は同名のユーザーが既に登録されている場合に返されます。
	ErrUserExists = errors.New("user already exists")
)

// CredentialStore は登録済みユーザーの認証情報をプロセス内メモリに保持します。
// ユーザー名の一意性を保証し、プロセスの生存期間を超えて永続化しません。
type CredentialStore struct {
	mu    sync.Mutex
	users map[string]string // username -> password
}

// NewCredentialStore は空の CredentialStore を作成します。
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		users: make(map[string]string),
	}
}

// Register はユーザーを新規登録します。
// ユーザー名は大文字小文字を区別した完全一致で重複判定します。
func (s *CredentialStore) Register(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	s.users[username] = password
	return nil
}

// Authenticate はユーザー名とパスワードの両方が完全一致する場合のみ true を返します。
// どちらが誤っていたかは呼び出し側に伝えません。
func (s *CredentialStore) Authenticate(username, password string) bool {
	if username == "" || password == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[username]
	return ok && stored == password
}
