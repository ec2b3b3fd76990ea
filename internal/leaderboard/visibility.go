package leaderboard

import "codeleague/internal/domain"

// Relations describe how the viewer is connected to each candidate member.
type Relations struct {
	// Friends are members the viewer has added.
	Friends map[int64]bool
	// IncomingFriends are members who have added the viewer.
	IncomingFriends map[int64]bool
	// GroupPeers share at least one group with the viewer.
	GroupPeers map[int64]bool
}

// Mutual reports whether the viewer and member have added each other.
func (r Relations) Mutual(memberID int64) bool {
	return r.Friends[memberID] && r.IncomingFriends[memberID]
}

// CanSee applies the member's visibility policy for the viewer.
func (r Relations) CanSee(viewerID int64, member *domain.User) bool {
	if member == nil {
		return false
	}
	if member.ID == viewerID {
		return true
	}
	switch member.Visibility {
	case domain.VisibilityEveryone:
		return true
	case domain.VisibilityFriends:
		return r.Mutual(member.ID) || r.GroupPeers[member.ID]
	default:
		return false
	}
}
