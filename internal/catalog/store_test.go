package catalog

import (
	"errors"
	"testing"
)

func newTestStore() *Store {
	return NewStore([]Book{
		{ISBN: "0001", Title: "Things Fall Apart", Author: "Chinua Achebe"},
		{ISBN: "0002", Title: "Fairy tales", Author: "Hans Christian Andersen"},
	})
}

func TestByISBN(t *testing.T) {
	store := newTestStore()

	book, err := store.ByISBN("0001")
	if err != nil {
		t.Fatalf("ByISBN returned error: %v", err)
	}
	if book.Title != "Things Fall Apart" {
		t.Fatalf("unexpected book: %+v", book)
	}
	if book.Reviews == nil {
		t.Fatal("Reviews must be an empty map, not nil")
	}

	if _, err := store.ByISBN("9999"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestByAuthorIsCaseInsensitive(t *testing.T) {
	store := newTestStore()

	matches := store.ByAuthor("chinua achebe")
	if len(matches) != 1 || matches[0].ISBN != "0001" {
		t.Fatalf("unexpected matches: %+v", matches)
	}

	if matches := store.ByAuthor("nobody"); len(matches) != 0 {
		t.Fatalf("expected no matches, got %+v", matches)
	}
}

func TestByTitleIsCaseInsensitive(t *testing.T) {
	store := newTestStore()

	matches := store.ByTitle("FAIRY TALES")
	if len(matches) != 1 || matches[0].ISBN != "0002" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestUpsertReviewOverwrites(t *testing.T) {
	store := newTestStore()

	reviews, err := store.UpsertReview("0001", "alice", "great")
	if err != nil {
		t.Fatalf("UpsertReview returned error: %v", err)
	}
	if reviews["alice"] != "great" {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}

	reviews, err = store.UpsertReview("0001", "alice", "even better")
	if err != nil {
		t.Fatalf("UpsertReview returned error: %v", err)
	}
	if len(reviews) != 1 || reviews["alice"] != "even better" {
		t.Fatalf("expected exactly one overwritten review, got %+v", reviews)
	}
}

func TestUpsertReviewErrors(t *testing.T) {
	store := newTestStore()

	if _, err := store.UpsertReview("9999", "alice", "great"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
	if _, err := store.UpsertReview("0001", "alice", ""); !errors.Is(err, ErrEmptyReview) {
		t.Fatalf("expected ErrEmptyReview, got %v", err)
	}
}

func TestDeleteReviewOwnership(t *testing.T) {
	store := newTestStore()

	if _, err := store.UpsertReview("0001", "bob", "fine"); err != nil {
		t.Fatalf("UpsertReview returned error: %v", err)
	}

	// 他人のレビューしか無い場合は削除できない
	if _, err := store.DeleteReview("0001", "alice"); !errors.Is(err, ErrReviewNotOwned) {
		t.Fatalf("expected ErrReviewNotOwned, got %v", err)
	}

	// 失敗した削除でレビューは変化しない
	reviews, err := store.Reviews("0001")
	if err != nil {
		t.Fatalf("Reviews returned error: %v", err)
	}
	if len(reviews) != 1 || reviews["bob"] != "fine" {
		t.Fatalf("reviews changed after forbidden delete: %+v", reviews)
	}
}

func TestDeleteReviewToEmpty(t *testing.T) {
	store := newTestStore()

	if _, err := store.UpsertReview("0001", "alice", "great"); err != nil {
		t.Fatalf("UpsertReview returned error: %v", err)
	}

	remaining, err := store.DeleteReview("0001", "alice")
	if err != nil {
		t.Fatalf("DeleteReview returned error: %v", err)
	}
	if remaining == nil {
		t.Fatal("remaining reviews must be an empty map, not nil")
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no remaining reviews, got %+v", remaining)
	}

	// レビューが空になった後の削除は NotFound 扱い
	if _, err := store.DeleteReview("0001", "alice"); !errors.Is(err, ErrNoReviews) {
		t.Fatalf("expected ErrNoReviews, got %v", err)
	}
}

func TestDeleteReviewUnknownBook(t *testing.T) {
	store := newTestStore()

	if _, err := store.DeleteReview("9999", "alice"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestSnapshotReturnsCopies(t *testing.T) {
	store := newTestStore()

	snapshot := store.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snapshot))
	}

	// スナップショットへの変更は元データへ波及しない
	snapshot["0001"].Reviews["mallory"] = "injected"

	reviews, err := store.Reviews("0001")
	if err != nil {
		t.Fatalf("Reviews returned error: %v", err)
	}
	if len(reviews) != 0 {
		t.Fatalf("store state was mutated through a snapshot: %+v", reviews)
	}
}
