package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
	qb "github.com/riskibarqy/tournament-reconciler/internal/platform/querybuilder"
)

const (
	socialPostsTable      = "social_posts"
	socialGameDataTable   = "social_game_data"
	socialPlacementsTable = "social_placements"
	socialLinksTable      = "social_post_game_links"
)

type SocialPostRepository struct {
	db *sqlx.DB
}

func NewSocialPostRepository(db *sqlx.DB) *SocialPostRepository {
	return &SocialPostRepository{db: db}
}

func (r *SocialPostRepository) GetByID(ctx context.Context, postID string) (social.Post, bool, error) {
	return getDocument[social.Post](ctx, r.db, "social post by id",
		qb.Select("id", "payload").From(socialPostsTable).Where(qb.Eq("id", postID)))
}

// ListByProcessingStatus returns posts oldest first; a limit <= 0 returns all.
func (r *SocialPostRepository) ListByProcessingStatus(ctx context.Context, status string, limit int) ([]social.Post, error) {
	return selectDocuments[social.Post](ctx, r.db, "social posts by status",
		qb.Select("id", "payload").From(socialPostsTable).
			Where(qb.Eq("processing_status", status)).
			OrderBy("posted_at", "id").
			Limit(limit))
}

func (r *SocialPostRepository) Upsert(ctx context.Context, post social.Post) error {
	return upsertDocument(ctx, r.db, document{
		table:    socialPostsTable,
		conflict: []string{"id"},
		keys:     []string{"id", "entity_id", "venue_id", "processing_status", "posted_at"},
		values:   []any{post.ID, nullString(post.EntityID), nullString(post.VenueID), post.ProcessingStatus, post.PostedAt.UTC()},
		payload:  post,
	})
}

type SocialGameDataRepository struct {
	db *sqlx.DB
}

func NewSocialGameDataRepository(db *sqlx.DB) *SocialGameDataRepository {
	return &SocialGameDataRepository{db: db}
}

func (r *SocialGameDataRepository) GetByID(ctx context.Context, id string) (social.GameData, bool, error) {
	return getDocument[social.GameData](ctx, r.db, "social game data by id",
		qb.Select("id", "payload").From(socialGameDataTable).Where(qb.Eq("id", id)))
}

func (r *SocialGameDataRepository) GetBySocialPost(ctx context.Context, postID string) (social.GameData, bool, error) {
	return getDocument[social.GameData](ctx, r.db, "social game data by post",
		qb.Select("id", "payload").From(socialGameDataTable).Where(qb.Eq("social_post_id", postID)))
}

func (r *SocialGameDataRepository) Upsert(ctx context.Context, data social.GameData) error {
	return upsertDocument(ctx, r.db, document{
		table:    socialGameDataTable,
		conflict: []string{"id"},
		keys:     []string{"id", "social_post_id"},
		values:   []any{data.ID, data.SocialPostID},
		payload:  data,
	})
}

type SocialPlacementRepository struct {
	db *sqlx.DB
}

func NewSocialPlacementRepository(db *sqlx.DB) *SocialPlacementRepository {
	return &SocialPlacementRepository{db: db}
}

func (r *SocialPlacementRepository) ListBySocialPost(ctx context.Context, postID string) ([]social.Placement, error) {
	return selectDocuments[social.Placement](ctx, r.db, "social placements",
		qb.Select("id", "payload").From(socialPlacementsTable).
			Where(qb.Eq("social_post_id", postID)).
			OrderBy("place"))
}

// ReplaceForSocialPost swaps the post's placements in one transaction.
func (r *SocialPlacementRepository) ReplaceForSocialPost(ctx context.Context, postID string, placements []social.Placement) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace placements tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = deleteWhere(ctx, tx, socialPlacementsTable, qb.Eq("social_post_id", postID)); err != nil {
		return err
	}

	if len(placements) > 0 {
		insert := qb.InsertInto(socialPlacementsTable).Columns("id", "social_post_id", "place", "payload")
		for _, p := range placements {
			p.SocialPostID = postID
			payload, encErr := encodePayload(p)
			if encErr != nil {
				return encErr
			}
			insert = insert.Values(p.ID, postID, p.Place, payload)
		}
		stmt, args, buildErr := insert.ToSQL()
		if buildErr != nil {
			return fmt.Errorf("build insert placements query: %w", buildErr)
		}
		if _, err = tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert placements: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace placements tx: %w", err)
	}
	return nil
}

type SocialLinkRepository struct {
	db *sqlx.DB
}

func NewSocialLinkRepository(db *sqlx.DB) *SocialLinkRepository {
	return &SocialLinkRepository{db: db}
}

func (r *SocialLinkRepository) GetByID(ctx context.Context, linkID string) (social.Link, bool, error) {
	return getDocument[social.Link](ctx, r.db, "social link by id", selectLinks().Where(qb.Eq("id", linkID)))
}

func (r *SocialLinkRepository) Get(ctx context.Context, postID, gameID string) (social.Link, bool, error) {
	return getDocument[social.Link](ctx, r.db, "social link by pair",
		selectLinks().Where(qb.Eq("social_post_id", postID), qb.Eq("game_id", gameID)))
}

func (r *SocialLinkRepository) ListBySocialPost(ctx context.Context, postID string) ([]social.Link, error) {
	return selectDocuments[social.Link](ctx, r.db, "social links by post", selectLinks().Where(qb.Eq("social_post_id", postID)))
}

func (r *SocialLinkRepository) ListByGame(ctx context.Context, gameID string) ([]social.Link, error) {
	return selectDocuments[social.Link](ctx, r.db, "social links by game", selectLinks().Where(qb.Eq("game_id", gameID)))
}

func (r *SocialLinkRepository) List(ctx context.Context) ([]social.Link, error) {
	return selectDocuments[social.Link](ctx, r.db, "social links", selectLinks())
}

// Upsert replaces any link for the same post and game pair.
func (r *SocialLinkRepository) Upsert(ctx context.Context, link social.Link) error {
	return upsertDocument(ctx, r.db, document{
		table:    socialLinksTable,
		conflict: []string{"social_post_id", "game_id"},
		keys:     []string{"id", "social_post_id", "game_id", "link_type", "mention_order"},
		values:   []any{link.ID, link.SocialPostID, link.GameID, link.LinkType, link.MentionOrder},
		payload:  link,
	})
}

func (r *SocialLinkRepository) Delete(ctx context.Context, linkID string) error {
	return deleteWhere(ctx, r.db, socialLinksTable, qb.Eq("id", linkID))
}

func selectLinks() *qb.SelectBuilder {
	return qb.Select("id", "payload").From(socialLinksTable).OrderBy("mention_order", "id")
}
