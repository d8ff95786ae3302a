package lifecycle

import "github.com/uts-support/ticket-service/internal/domain"

// VisibleComments filters a comment thread for the given viewer. Internal
// viewers see everything. External viewers see only comments tagged external,
// and replies are filtered independently of their parent: an internal reply
// under an external comment stays hidden.
func VisibleComments(comments []domain.Comment, viewer domain.UserType) []domain.Comment {
	visible := make([]domain.Comment, 0, len(comments))
	for _, comment := range comments {
		if viewer != domain.UserTypeInternal && comment.UserType != domain.UserTypeExternal {
			continue
		}
		filtered := comment
		filtered.Replies = make([]domain.Comment, 0, len(comment.Replies))
		for _, reply := range comment.Replies {
			if viewer != domain.UserTypeInternal && reply.UserType != domain.UserTypeExternal {
				continue
			}
			filtered.Replies = append(filtered.Replies, reply)
		}
		visible = append(visible, filtered)
	}
	return visible
}
