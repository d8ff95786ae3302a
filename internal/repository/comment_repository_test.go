package repository

import (
	"testing"
	"time"

	"github.com/uts-support/ticket-service/internal/domain"
)

func flatComment(id int64, parentID *int64, minute int) domain.Comment {
	return domain.Comment{
		ID:        id,
		TicketID:  "TKT-000001",
		ParentID:  parentID,
		Author:    "agent",
		Content:   "c",
		UserType:  domain.UserTypeInternal,
		CreatedAt: time.Date(2025, 3, 1, 9, minute, 0, 0, time.UTC),
	}
}

func TestAssembleThreadOrdering(t *testing.T) {
	first := int64(1)
	third := int64(3)
	flat := []domain.Comment{
		flatComment(1, nil, 0),
		flatComment(2, &first, 5),
		flatComment(3, nil, 10),
		flatComment(4, &first, 15),
		flatComment(5, &third, 20),
	}

	thread := assembleThread(flat)
	if len(thread) != 2 {
		t.Fatalf("top-level comments = %d, want 2", len(thread))
	}
	if thread[0].ID != 3 || thread[1].ID != 1 {
		t.Fatalf("top-level order = [%d %d], want newest-first [3 1]", thread[0].ID, thread[1].ID)
	}

	if len(thread[1].Replies) != 2 {
		t.Fatalf("replies under comment 1 = %d, want 2", len(thread[1].Replies))
	}
	if thread[1].Replies[0].ID != 2 || thread[1].Replies[1].ID != 4 {
		t.Fatalf("reply order = [%d %d], want oldest-first [2 4]", thread[1].Replies[0].ID, thread[1].Replies[1].ID)
	}
	if len(thread[0].Replies) != 1 || thread[0].Replies[0].ID != 5 {
		t.Fatalf("replies under comment 3 = %+v", thread[0].Replies)
	}
}

func TestAssembleThreadDropsOrphanReplies(t *testing.T) {
	gone := int64(99)
	flat := []domain.Comment{
		flatComment(1, nil, 0),
		flatComment(2, &gone, 5),
	}

	thread := assembleThread(flat)
	if len(thread) != 1 || thread[0].ID != 1 {
		t.Fatalf("thread = %+v, want only the surviving top-level comment", thread)
	}
	if len(thread[0].Replies) != 0 {
		t.Fatalf("orphan reply must not attach anywhere, got %+v", thread[0].Replies)
	}
}

func TestAssembleThreadEmpty(t *testing.T) {
	if thread := assembleThread(nil); len(thread) != 0 {
		t.Fatalf("thread = %+v, want empty", thread)
	}
}
