package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/repository"
	"github.com/templui/storyloom/internal/storage"
	"github.com/templui/storyloom/internal/validation"
)

var ErrStorageDisabled = errors.New("file storage is not configured")

type FileService struct {
	fileRepository repository.FileRepository
	storyService   *StoryService
	storage        storage.Storage
}

// NewFileService accepts a nil storage; uploads then fail with ErrStorageDisabled.
func NewFileService(fileRepository repository.FileRepository, storyService *StoryService, storage storage.Storage) *FileService {
	return &FileService{
		fileRepository: fileRepository,
		storyService:   storyService,
		storage:        storage,
	}
}

// UploadCover stores a cover image for a story owned by userID. Covers are
// public. If the database insert fails the uploaded object is removed again.
func (s *FileService) UploadCover(ctx context.Context, userID, storyID string, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	_, err := s.storyService.Story(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	err = validation.ValidateFile(header, validation.CoverConstraints)
	if err != nil {
		return nil, NewValidationError("cover", err.Error())
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := uuid.New().String() + ext
	storagePath := path.Join("public", "covers", filename)

	mimeType := mime.TypeByExtension(ext)
	previous, err := s.fileRepository.FileByType(ctx, model.FileOwnerStory, storyID, model.FileTypeCover)
	if err != nil && !errors.Is(err, repository.ErrFileNotFound) {
		return nil, fmt.Errorf("failed to get current cover: %w", err)
	}

	err = s.storage.Save(ctx, storagePath, mimeType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	cover := &model.File{
		ID:           uuid.New().String(),
		UserID:       userID,
		OwnerType:    model.FileOwnerStory,
		OwnerID:      storyID,
		Type:         model.FileTypeCover,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
		StoragePath:  storagePath,
		Public:       true,
		CreatedAt:    time.Now(),
	}

	err = s.fileRepository.Create(ctx, cover)
	if err != nil {
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, &RemoteWriteError{Table: "files", Err: err}
	}

	if previous != nil {
		s.deleteFile(ctx, previous)
	}

	cover.URL, err = s.storage.URL(ctx, storagePath, true)
	if err != nil {
		slog.Warn("failed to build cover url", "error", err, "file_id", cover.ID)
	}
	return cover, nil
}

// deleteFile removes a replaced file. Storage deletion is best effort.
func (s *FileService) deleteFile(ctx context.Context, file *model.File) {
	err := s.storage.Delete(ctx, file.StoragePath)
	if err != nil {
		slog.Warn("failed to delete file from storage", "error", err, "path", file.StoragePath)
	}

	err = s.fileRepository.Delete(ctx, file.ID)
	if err != nil {
		slog.Error("failed to delete file record", "error", err, "file_id", file.ID)
	}
}

// Cover returns the newest cover of a story with a fetchable URL.
func (s *FileService) Cover(ctx context.Context, userID, storyID string) (*model.File, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	_, err := s.storyService.Story(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	cover, err := s.fileRepository.FileByType(ctx, model.FileOwnerStory, storyID, model.FileTypeCover)
	if err != nil {
		return nil, err
	}

	cover.URL, err = s.storage.URL(ctx, cover.StoragePath, cover.Public)
	if err != nil {
		return nil, err
	}
	return cover, nil
}
