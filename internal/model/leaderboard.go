package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is one ranked, completed player.
type LeaderboardEntry struct {
	Rank          int        `json:"rank"`
	UserID        uuid.UUID  `json:"user_id"`
	Name          string     `json:"name,omitempty"`
	Score         int        `json:"score"`
	AttemptNumber int        `json:"attempt_number"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Leaderboard ranks completed players by score, earlier completion first on
// ties. Players with equal scores share a rank.
func (r *Room) Leaderboard() []LeaderboardEntry {
	completed := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Completed {
			completed = append(completed, p)
		}
	}

	sort.Slice(completed, func(i, j int) bool {
		a, b := completed[i], completed[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if at, bt := completedTime(a), completedTime(b); !at.Equal(bt) {
			return at.Before(bt)
		}
		return a.UserID.String() < b.UserID.String()
	})

	entries := make([]LeaderboardEntry, len(completed))
	for i, p := range completed {
		rank := i + 1
		if i > 0 && completed[i-1].Score == p.Score {
			rank = entries[i-1].Rank
		}
		entries[i] = LeaderboardEntry{
			Rank:          rank,
			UserID:        p.UserID,
			Score:         p.Score,
			AttemptNumber: p.AttemptNumber,
			CompletedAt:   p.CompletedAt,
		}
	}
	return entries
}

func completedTime(p *Player) time.Time {
	if p.CompletedAt == nil {
		return time.Time{}
	}
	return *p.CompletedAt
}
