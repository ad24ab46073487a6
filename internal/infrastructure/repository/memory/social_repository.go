package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
)

// SocialRepository keeps posts, extractions, placements and links together so
// tests and local runs can share one store.
type SocialRepository struct {
	mu         sync.RWMutex
	posts      map[string]social.Post
	data       map[string]social.GameData
	placements map[string][]social.Placement
	links      map[string]social.Link
}

func NewSocialRepository(posts []social.Post) *SocialRepository {
	r := &SocialRepository{
		posts:      make(map[string]social.Post, len(posts)),
		data:       make(map[string]social.GameData),
		placements: make(map[string][]social.Placement),
		links:      make(map[string]social.Link),
	}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *SocialRepository) Posts() social.PostRepository           { return postStore{r} }
func (r *SocialRepository) GameData() social.GameDataRepository    { return dataStore{r} }
func (r *SocialRepository) Placements() social.PlacementRepository { return placementStore{r} }
func (r *SocialRepository) Links() social.LinkRepository           { return linkStore{r} }

type postStore struct{ r *SocialRepository }

func (s postStore) GetByID(_ context.Context, postID string) (social.Post, bool, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	p, ok := s.r.posts[postID]
	return p, ok, nil
}

// ListByProcessingStatus returns posts oldest first; a limit <= 0 returns all.
func (s postStore) ListByProcessingStatus(_ context.Context, status string, limit int) ([]social.Post, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	out := make([]social.Post, 0)
	for _, p := range s.r.posts {
		if p.ProcessingStatus == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PostedAt.Equal(out[j].PostedAt) {
			return out[i].PostedAt.Before(out[j].PostedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s postStore) Upsert(_ context.Context, post social.Post) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	s.r.posts[post.ID] = post
	return nil
}

type dataStore struct{ r *SocialRepository }

func (s dataStore) GetByID(_ context.Context, id string) (social.GameData, bool, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	d, ok := s.r.data[id]
	return d, ok, nil
}

func (s dataStore) GetBySocialPost(_ context.Context, postID string) (social.GameData, bool, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	for _, d := range s.r.data {
		if d.SocialPostID == postID {
			return d, true, nil
		}
	}
	return social.GameData{}, false, nil
}

func (s dataStore) Upsert(_ context.Context, data social.GameData) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	s.r.data[data.ID] = data
	return nil
}

type placementStore struct{ r *SocialRepository }

func (s placementStore) ListBySocialPost(_ context.Context, postID string) ([]social.Placement, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	items := s.r.placements[postID]
	out := make([]social.Placement, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (s placementStore) ReplaceForSocialPost(_ context.Context, postID string, placements []social.Placement) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	items := make([]social.Placement, 0, len(placements))
	items = append(items, placements...)
	s.r.placements[postID] = items
	return nil
}

type linkStore struct{ r *SocialRepository }

func (s linkStore) GetByID(_ context.Context, linkID string) (social.Link, bool, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	l, ok := s.r.links[linkID]
	return l, ok, nil
}

func (s linkStore) Get(_ context.Context, postID, gameID string) (social.Link, bool, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	for _, l := range s.r.links {
		if l.SocialPostID == postID && l.GameID == gameID {
			return l, true, nil
		}
	}
	return social.Link{}, false, nil
}

func (s linkStore) ListBySocialPost(_ context.Context, postID string) ([]social.Link, error) {
	return s.filter(func(l social.Link) bool { return l.SocialPostID == postID }), nil
}

func (s linkStore) ListByGame(_ context.Context, gameID string) ([]social.Link, error) {
	return s.filter(func(l social.Link) bool { return l.GameID == gameID }), nil
}

func (s linkStore) List(_ context.Context) ([]social.Link, error) {
	return s.filter(func(social.Link) bool { return true }), nil
}

// Upsert replaces any link for the same post and game pair.
func (s linkStore) Upsert(_ context.Context, link social.Link) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	for id, l := range s.r.links {
		if id != link.ID && l.SocialPostID == link.SocialPostID && l.GameID == link.GameID {
			delete(s.r.links, id)
		}
	}
	s.r.links[link.ID] = link
	return nil
}

func (s linkStore) Delete(_ context.Context, linkID string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	delete(s.r.links, linkID)
	return nil
}

func (s linkStore) filter(keep func(social.Link) bool) []social.Link {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	out := make([]social.Link, 0)
	for _, l := range s.r.links {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MentionOrder != out[j].MentionOrder {
			return out[i].MentionOrder < out[j].MentionOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}
