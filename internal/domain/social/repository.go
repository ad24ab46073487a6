package social

import "context"

// PostRepository stores scraped posts.
type PostRepository interface {
	GetByID(ctx context.Context, postID string) (Post, bool, error)
	ListByProcessingStatus(ctx context.Context, status string, limit int) ([]Post, error)
	Upsert(ctx context.Context, post Post) error
}

// GameDataRepository stores the extraction of each post.
type GameDataRepository interface {
	GetByID(ctx context.Context, id string) (GameData, bool, error)
	GetBySocialPost(ctx context.Context, postID string) (GameData, bool, error)
	Upsert(ctx context.Context, data GameData) error
}

// PlacementRepository stores parsed finishing positions.
type PlacementRepository interface {
	ListBySocialPost(ctx context.Context, postID string) ([]Placement, error)
	ReplaceForSocialPost(ctx context.Context, postID string, placements []Placement) error
}

// LinkRepository stores post to game links. The (socialPostId, gameId) pair is unique.
type LinkRepository interface {
	GetByID(ctx context.Context, linkID string) (Link, bool, error)
	Get(ctx context.Context, postID, gameID string) (Link, bool, error)
	ListBySocialPost(ctx context.Context, postID string) ([]Link, error)
	ListByGame(ctx context.Context, gameID string) ([]Link, error)
	List(ctx context.Context) ([]Link, error)
	Upsert(ctx context.Context, link Link) error
	Delete(ctx context.Context, linkID string) error
}
