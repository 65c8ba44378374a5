package catalog

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrBookNotFound は指定されたISBNの書籍が存在しない場合に返されます。
	ErrBookNotFound = errors.New("book not found")
	// ErrNoReviews は削除対象の書籍にレビューが1件も無い場合に返されます。
	ErrNoReviews = errors.New("book has no reviews")
	// ErrReviewNotOwned は自分のレビューが存在しない書籍に対して削除を試みた場合に返されます。
	ErrReviewNotOwned = errors.New("user has no review for this book")
	// ErrEmptyReview はレビュー本文が空の場合に返されます。
	ErrEmptyReview = errors.New("review text is required")
)

// Store は書籍カタログとレビューをプロセス内メモリに保持します。
// 書籍とレビューは1つの論理テーブルとして単一のロックで保護します。
type Store struct {
	mu    sync.RWMutex
	books map[string]*Book // isbn -> book
}

// NewStore は与えられた書籍でカタログを初期化します。
func NewStore(books []Book) *Store {
	s := &Store{
		books: make(map[string]*Book, len(books)),
	}
	for _, b := range books {
		book := b
		book.Reviews = copyReviews(b.Reviews)
		s.books[book.ISBN] = &book
	}
	return s
}

// Snapshot は全書籍をISBNをキーとするマップのコピーで返します。
func (s *Store) Snapshot() map[string]Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]Book, len(s.books))
	for isbn, book := range s.books {
		snapshot[isbn] = book.copy()
	}
	return snapshot
}

// ByISBN はISBNに対応する書籍を返します。
func (s *Store) ByISBN(isbn string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[isbn]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	return book.copy(), nil
}

// ByAuthor は著者名が一致する書籍の一覧を返します。大文字小文字は区別しません。
func (s *Store) ByAuthor(author string) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Book
	for _, book := range s.books {
		if strings.EqualFold(book.Author, author) {
			matches = append(matches, book.copy())
		}
	}
	return matches
}

// ByTitle はタイトルが一致する書籍の一覧を返します。大文字小文字は区別しません。
func (s *Store) ByTitle(title string) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Book
	for _, book := range s.books {
		if strings.EqualFold(book.Title, title) {
			matches = append(matches, book.copy())
		}
	}
	return matches
}

// Reviews は指定された書籍のレビュー一覧のコピーを返します。
func (s *Store) Reviews(isbn string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[isbn]
	if !ok {
		return nil, ErrBookNotFound
	}
	return copyReviews(book.Reviews), nil
}

// UpsertReview はユーザーのレビューを登録します。同一ユーザーの既存レビューは
// 上書きされ、1冊につきユーザーあたり常に最大1件となります。
// 戻り値は更新後のレビュー一覧全体のコピーです。
func (s *Store) UpsertReview(isbn, username, text string) (map[string]string, error) {
	if text == "" {
		return nil, ErrEmptyReview
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[isbn]
	if !ok {
		return nil, ErrBookNotFound
	}

	if book.Reviews == nil {
		book.Reviews = make(map[string]string)
	}
	book.Reviews[username] = text
	return copyReviews(book.Reviews), nil
}

// DeleteReview はユーザー自身のレビューを削除します。
// 他人のレビューは削除できません（所有者のみが削除可能）。
// 戻り値は残りのレビュー一覧のコピーで、空になった場合も空のマップです。
func (s *Store) DeleteReview(isbn, username string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[isbn]
	if !ok {
		return nil, ErrBookNotFound
	}
	if len(book.Reviews) == 0 {
		return nil, ErrNoReviews
	}
	if _, ok := book.Reviews[username]; !ok {
		return nil, ErrReviewNotOwned
	}

	delete(book.Reviews, username)
	return copyReviews(book.Reviews), nil
}

func (b *Book) copy() Book {
	c := *b
	c.Reviews = copyReviews(b.Reviews)
	return c
}

func copyReviews(reviews map[string]string) map[string]string {
	c := make(map[string]string, len(reviews))
	for user, text := range reviews {
		c[user] = text
	}
	return c
}
