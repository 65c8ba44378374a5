package catalog

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SK2805/book-reviews/internal/auth"
)

// Provider は読み取り専用のカタログ参照を提供します。
type Provider interface {
	Snapshot() map[string]Book
	ByISBN(isbn string) (Book, error)
	ByAuthor(author string) []Book
	ByTitle(title string) []Book
	Reviews(isbn string) (map[string]string, error)
}

// ReviewLedger はレビューの変更操作を提供します。
type ReviewLedger interface {
	UpsertReview(isbn, username, text string) (map[string]string, error)
	DeleteReview(isbn, username string) (map[string]string, error)
}

// ListHandler は GET / のハンドラーを返します。
func ListHandler(p Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, p.Snapshot())
	}
}

// BookByISBNHandler は GET /isbn/:isbn のハンドラーを返します。
func BookByISBNHandler(p Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		isbn := c.Param("isbn")
		book, err := p.ByISBN(isbn)
		if err != nil {
			respondWithError(c, isbn, err)
			return
		}
		c.JSON(http.StatusOK, book)
	}
}

// BooksByAuthorHandler は GET /author/:author のハンドラーを返します。
func BooksByAuthorHandler(p Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		author := c.Param("author")
		matches := p.ByAuthor(author)
		if len(matches) == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "BOOK_NOT_FOUND",
				"message": fmt.Sprintf("No books found by author '%s'", author),
			})
			return
		}
		c.JSON(http.StatusOK, matches)
	}
}

// BooksByTitleHandler は GET /title/:title のハンドラーを返します。
func BooksByTitleHandler(p Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.Param("title")
		matches := p.ByTitle(title)
		if len(matches) == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "BOOK_NOT_FOUND",
				"message": fmt.Sprintf("No books found with title '%s'", title),
			})
			return
		}
		c.JSON(http.StatusOK, matches)
	}
}

// ReviewsHandler は GET /review/:isbn のハンドラーを返します。認証は不要です。
func ReviewsHandler(p Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		isbn := c.Param("isbn")
		reviews, err := p.Reviews(isbn)
		if err != nil {
			respondWithError(c, isbn, err)
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}

type reviewRequest struct {
	Review string `json:"review"`
}

// UpsertReviewHandler は PUT /auth/review/:isbn のハンドラーを返します。
// レビューの所有者は認証ミドルウェアが解決したユーザーであり、
// リクエストが指定するユーザー名は決して信用しません。
func UpsertReviewHandler(ledger ReviewLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		isbn := c.Param("isbn")

		username, ok := auth.UserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "User not logged in",
			})
			return
		}

		review := extractReview(c)
		if review == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "Review text is required (send in body as {\"review\": \"...\"} or as ?review=...)",
			})
			return
		}

		reviews, err := ledger.UpsertReview(isbn, username, review)
		if err != nil {
			respondWithError(c, isbn, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Review added/updated for ISBN %s", isbn),
			"reviews": reviews,
		})
	}
}

// DeleteReviewHandler は DELETE /auth/review/:isbn のハンドラーを返します。
// 削除できるのは認証済みユーザー自身のレビューのみです。
func DeleteReviewHandler(ledger ReviewLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		isbn := c.Param("isbn")

		username, ok := auth.UserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "User not logged in",
			})
			return
		}

		reviews, err := ledger.DeleteReview(isbn, username)
		if err != nil {
			respondWithError(c, isbn, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Review deleted for ISBN %s by user %s", isbn, username),
			"reviews": reviews,
		})
	}
}

// extractReview はクエリパラメータまたはJSONボディからレビュー本文を取り出します。
func extractReview(c *gin.Context) string {
	if review := c.Query("review"); review != "" {
		return review
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return req.Review
}

func respondWithError(c *gin.Context, isbn string, err error) {
	switch {
	case errors.Is(err, ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "BOOK_NOT_FOUND",
			"message": fmt.Sprintf("Book with ISBN %s not found", isbn),
		})
	case errors.Is(err, ErrNoReviews):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NO_REVIEWS",
			"message": fmt.Sprintf("No reviews found for ISBN %s", isbn),
		})
	case errors.Is(err, ErrReviewNotOwned):
		c.JSON(http.StatusForbidden, gin.H{
			"code":    "FORBIDDEN",
			"message": "You do not have a review for this book to delete",
		})
	case errors.Is(err, ErrEmptyReview):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "Review text is required",
		})
	default:
		log.Printf("catalog handler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Internal server error",
		})
	}
}
