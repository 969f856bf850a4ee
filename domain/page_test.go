package domain

import (
	"testing"
	"time"
)

func makePosts(n int) []Post {
	posts := make([]Post, n)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		posts[i] = Post{
			ID:        n - i,
			Text:      "post",
			UserID:    1,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return posts
}

func TestNewPageSlicing(t *testing.T) {
	posts := makePosts(12)

	page := NewPage(posts, 10, 1)
	if len(page.Items) != 10 {
		t.Errorf("page 1: expected 10 items, got %d", len(page.Items))
	}
	if page.TotalCount != 12 {
		t.Errorf("expected total count 12, got %d", page.TotalCount)
	}
	if page.Count != 2 {
		t.Errorf("expected page count 2, got %d", page.Count)
	}
	if page.Number != 1 {
		t.Errorf("expected page number 1, got %d", page.Number)
	}

	page = NewPage(posts, 10, 2)
	if len(page.Items) != 2 {
		t.Errorf("page 2: expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].ID != posts[10].ID {
		t.Errorf("page 2 should continue where page 1 ended")
	}
}

func TestNewPageClampsOutOfRange(t *testing.T) {
	posts := makePosts(12)

	page := NewPage(posts, 10, 99)
	if page.Number != 2 {
		t.Errorf("expected page 99 to clamp to 2, got %d", page.Number)
	}
	if len(page.Items) != 2 {
		t.Errorf("expected last page with 2 items, got %d", len(page.Items))
	}
}

func TestNewPageDefaultsInvalidNumbers(t *testing.T) {
	posts := makePosts(3)

	for _, n := range []int{0, -1, -99} {
		page := NewPage(posts, 10, n)
		if page.Number != 1 {
			t.Errorf("page number %d: expected fallback to 1, got %d", n, page.Number)
		}
		if len(page.Items) != 3 {
			t.Errorf("page number %d: expected 3 items, got %d", n, len(page.Items))
		}
	}
}

func TestNewPageEmptySequence(t *testing.T) {
	page := NewPage(nil, 10, 1)
	if len(page.Items) != 0 {
		t.Errorf("expected no items, got %d", len(page.Items))
	}
	if page.TotalCount != 0 {
		t.Errorf("expected total count 0, got %d", page.TotalCount)
	}
	if page.Count != 1 {
		t.Errorf("an empty sequence still has one (empty) page, got %d", page.Count)
	}
	if page.Number != 1 {
		t.Errorf("expected page number 1, got %d", page.Number)
	}
}

func TestNewPageExactMultiple(t *testing.T) {
	posts := makePosts(20)

	page := NewPage(posts, 10, 2)
	if page.Count != 2 {
		t.Errorf("expected page count 2, got %d", page.Count)
	}
	if len(page.Items) != 10 {
		t.Errorf("expected 10 items on the last page, got %d", len(page.Items))
	}
}
