package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/testutil"
)

func newStory(userID, id string) *model.Story {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Story{
		ID:         id,
		Title:      "Tide",
		Content:    "The sea came in.",
		AuthorName: "Ada",
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestStoryRepository(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	user := testutil.InsertUser(t, conn, "ada@example.com")
	repo := NewStoryRepository(conn)

	require.NoError(t, repo.Create(ctx, newStory(user.ID, "s1")))

	got, err := repo.ByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Tide", got.Title)
	assert.Equal(t, user.ID, got.UserID)

	stories, err := repo.UserStories(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, stories, 1)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrStoryNotFound)

	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.ErrorIs(t, repo.Delete(ctx, "s1"), ErrStoryNotFound)
}

func TestStoryRequiresExistingUser(t *testing.T) {
	conn := testutil.NewDB(t)
	repo := NewStoryRepository(conn)

	err := repo.Create(context.Background(), newStory("nobody", "s1"))
	assert.Error(t, err)
}

func TestAssetRepositoryRoundTripsMeta(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	user := testutil.InsertUser(t, conn, "ada@example.com")
	require.NoError(t, NewStoryRepository(conn).Create(ctx, newStory(user.ID, "s1")))
	repo := NewAssetRepository(conn)

	preview := "https://picsum.photos/400/300?random=1"
	image := &model.GeneratedAsset{
		ID:        "a1",
		StoryID:   "s1",
		AssetType: model.AssetTypeImage,
		Title:     "Tide - Image",
		URL:       "https://example.com/image/1",
		Preview:   &preview,
		Meta:      model.ImageMeta{Resolution: "1920x1080"},
		CreatedAt: time.Now().UTC(),
	}
	audio := &model.GeneratedAsset{
		ID:        "a2",
		StoryID:   "s1",
		AssetType: model.AssetTypeAudiobook,
		Title:     "Tide - Audiobook",
		URL:       "https://example.com/audiobook/2",
		Meta:      model.AudiobookMeta{Duration: 323},
		CreatedAt: time.Now().UTC().Add(time.Second),
	}
	require.NoError(t, repo.Create(ctx, image))
	require.NoError(t, repo.Create(ctx, audio))

	assets, err := repo.StoryAssets(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.Equal(t, model.ImageMeta{Resolution: "1920x1080"}, assets[0].Meta)
	require.NotNil(t, assets[0].Preview)
	assert.Equal(t, preview, *assets[0].Preview)
	assert.Equal(t, model.AudiobookMeta{Duration: 323}, assets[1].Meta)
	assert.Nil(t, assets[1].Preview)

	count, err := repo.CountStoryAssets(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAssetRequiresExistingStory(t *testing.T) {
	conn := testutil.NewDB(t)
	repo := NewAssetRepository(conn)

	err := repo.Create(context.Background(), &model.GeneratedAsset{
		ID:        "a1",
		StoryID:   "missing",
		AssetType: model.AssetTypeComic,
		Title:     "x",
		URL:       "https://example.com/comic/1",
		Meta:      model.ComicMeta{PageCount: 12},
		CreatedAt: time.Now(),
	})
	assert.Error(t, err)
}

func TestOrphanRepository(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	user := testutil.InsertUser(t, conn, "ada@example.com")
	stories := NewStoryRepository(conn)
	require.NoError(t, stories.Create(ctx, newStory(user.ID, "s1")))
	repo := NewOrphanRepository(conn)

	orphan := &model.OrphanedStory{StoryID: "s1", Reason: "asset write failed", CreatedAt: time.Now()}
	require.NoError(t, repo.Mark(ctx, orphan))
	require.NoError(t, repo.Mark(ctx, &model.OrphanedStory{StoryID: "s1", Reason: "again", CreatedAt: time.Now()}))

	orphans, err := repo.Orphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "asset write failed", orphans[0].Reason)

	require.NoError(t, repo.Clear(ctx, "s1"))
	orphans, err = repo.Orphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestOrphanMarkerRemovedWithStory(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	user := testutil.InsertUser(t, conn, "ada@example.com")
	stories := NewStoryRepository(conn)
	require.NoError(t, stories.Create(ctx, newStory(user.ID, "s1")))
	repo := NewOrphanRepository(conn)
	require.NoError(t, repo.Mark(ctx, &model.OrphanedStory{StoryID: "s1", Reason: "r", CreatedAt: time.Now()}))

	require.NoError(t, stories.Delete(ctx, "s1"))

	orphans, err := repo.Orphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	repo := NewUserRepository(conn)

	user := &model.User{ID: "u1", Email: "ada@example.com", PasswordHash: "hash", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, user))

	dup := &model.User{ID: "u2", Email: "ada@example.com", PasswordHash: "hash", CreatedAt: time.Now()}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateEmail)

	got, err := repo.ByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = repo.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = repo.ByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	user := testutil.InsertUser(t, conn, "ada@example.com")
	repo := NewFileRepository(conn)

	older := &model.File{
		ID: "f1", UserID: user.ID, OwnerType: model.FileOwnerStory, OwnerID: "s1", Type: model.FileTypeCover,
		Filename: "a.png", OriginalName: "cover.png", MimeType: "image/png", Size: 10,
		StoragePath: "public/covers/a.png", Public: true, CreatedAt: time.Now().Add(-time.Minute),
	}
	newer := *older
	newer.ID = "f2"
	newer.Filename = "b.png"
	newer.StoragePath = "public/covers/b.png"
	newer.CreatedAt = time.Now()
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, &newer))

	got, err := repo.FileByType(ctx, model.FileOwnerStory, "s1", model.FileTypeCover)
	require.NoError(t, err)
	assert.Equal(t, "f2", got.ID)
	assert.True(t, got.Public)

	got, err = repo.ByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "cover.png", got.OriginalName)

	require.NoError(t, repo.Delete(ctx, "f1"))
	_, err = repo.ByID(ctx, "f1")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = repo.FileByType(ctx, model.FileOwnerStory, "other", model.FileTypeCover)
	assert.ErrorIs(t, err, ErrFileNotFound)
}
