package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/rebk-studio/ms-go-studio/app/entity"
	"github.com/rebk-studio/ms-go-studio/app/factory"
	"github.com/sirupsen/logrus"
)

const maxSlugLength = 40

type categoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*entity.Category, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
}

type imageRepository interface {
	Create(ctx context.Context, image *entity.Image) error
	Update(ctx context.Context, image *entity.Image) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*entity.Image, error)
	ListByCategory(ctx context.Context, categoryID uint64) ([]*entity.Image, error)
	ListAll(ctx context.Context) ([]*entity.Image, error)
	CountAll(ctx context.Context) (int64, error)
	ListFilenames(ctx context.Context) ([]string, error)
}

type mediaStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Remove(stored string) error
	List() ([]string, error)
}

type galleryCacheFlusher interface {
	Flush(ctx context.Context)
}

// CategoryChange is one row of a staff album-listing submission. A zero ID
// with a name creates; Delete wins over any field edits.
type CategoryChange struct {
	ID          uint64
	Name        string
	Description string
	Delete      bool
}

// ImageUpload carries an uploaded picture and the name it had on the
// client's machine. The stored filename is generated, never the original.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

// ImageChange is one row of a staff album-detail submission. A zero ID with
// an upload adds a picture; a non-zero ID edits or deletes one.
type ImageChange struct {
	ID      uint64
	Caption string
	Delete  bool
	Upload  *ImageUpload
}

// CategoryListing pairs a category with its picture count for the staff
// album index.
type CategoryListing struct {
	Category   *entity.Category
	ImageCount int64
}

type GalleryService struct {
	categoryRepo categoryRepository
	imageRepo    imageRepository
	activityRepo activityLogRepository
	media        mediaStore
	cache        galleryCacheFlusher
	logger       logrus.FieldLogger
}

// NewGalleryService wires the gallery CRUD service. cache may be nil when no
// read cache is configured.
func NewGalleryService(
	categoryRepo categoryRepository,
	imageRepo imageRepository,
	activityRepo activityLogRepository,
	media mediaStore,
	cache galleryCacheFlusher,
) *GalleryService {
	return &GalleryService{
		categoryRepo: categoryRepo,
		imageRepo:    imageRepo,
		activityRepo: activityRepo,
		media:        media,
		cache:        cache,
		logger:       factory.NewModuleLogger("gallery-service"),
	}
}

// Menu returns the categories for the public gallery navigation, ordered by
// name.
func (s *GalleryService) Menu(ctx context.Context) ([]*entity.Category, error) {
	return s.categoryRepo.List(ctx)
}

// CategoryBySlug returns a category and its pictures for the public album
// page.
func (s *GalleryService) CategoryBySlug(ctx context.Context, slug string) (*entity.Category, []*entity.Image, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, fmt.Errorf("%w: no album with slug %s", ErrCategoryNotFound, slug)
	}

	images, err := s.imageRepo.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, nil, err
	}

	return category, images, nil
}

// Images returns pictures matching the filter ("All", empty, or a category
// id) together with the total picture count across all categories.
func (s *GalleryService) Images(ctx context.Context, filter string) ([]*entity.Image, int64, error) {
	total, err := s.imageRepo.CountAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	if filter == "" || strings.EqualFold(filter, "All") {
		images, err := s.imageRepo.ListAll(ctx)
		if err != nil {
			return nil, 0, err
		}
		return images, total, nil
	}

	categoryID, err := strconv.ParseUint(filter, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: filter must be a category id or All", ErrInvalidRequest)
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, 0, err
	}
	if category == nil {
		return nil, 0, fmt.Errorf("%w: no category with id %d", ErrCategoryNotFound, categoryID)
	}

	images, err := s.imageRepo.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, 0, err
	}
	return images, total, nil
}

// ListCategories returns every category with its picture count for the staff
// album index.
func (s *GalleryService) ListCategories(ctx context.Context) ([]*CategoryListing, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]*CategoryListing, 0, len(categories))
	for _, category := range categories {
		images, err := s.imageRepo.ListByCategory(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		listings = append(listings, &CategoryListing{
			Category:   category,
			ImageCount: int64(len(images)),
		})
	}

	return listings, nil
}

// SaveCategories applies a batch of album create, rename, describe, and
// delete changes, returning one human-readable message per change made.
func (s *GalleryService) SaveCategories(ctx context.Context, user *entity.User, changes []CategoryChange) ([]string, error) {
	var messages []string

	for _, change := range changes {
		switch {
		case change.ID == 0:
			name := strings.TrimSpace(change.Name)
			if name == "" {
				continue
			}
			msg, err := s.createCategory(ctx, name, change.Description)
			if err != nil {
				return nil, err
			}
			messages = append(messages, msg)

		case change.Delete:
			msg, err := s.deleteCategory(ctx, change.ID)
			if err != nil {
				return nil, err
			}
			messages = append(messages, msg)

		default:
			edited, err := s.editCategory(ctx, change)
			if err != nil {
				return nil, err
			}
			messages = append(messages, edited...)
		}
	}

	if len(messages) == 0 {
		return []string{"No changes made"}, nil
	}

	for _, msg := range messages {
		s.logActivity(ctx, fmt.Sprintf("%s by admin user %s", msg, user.Username))
	}
	s.flushCache(ctx)

	return messages, nil
}

func (s *GalleryService) createCategory(ctx context.Context, name, description string) (string, error) {
	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return "", err
	}

	category := &entity.Category{
		Name:        name,
		Description: description,
		Slug:        slug,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return "", err
	}

	return fmt.Sprintf("Category '%s' has been created", name), nil
}

func (s *GalleryService) deleteCategory(ctx context.Context, id uint64) (string, error) {
	category, err := s.mustFindCategory(ctx, id)
	if err != nil {
		return "", err
	}

	images, err := s.imageRepo.ListByCategory(ctx, category.ID)
	if err != nil {
		return "", err
	}
	for _, image := range images {
		if err := s.removeImage(ctx, image); err != nil {
			return "", err
		}
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		return "", err
	}

	return fmt.Sprintf("Category '%s' and all associated images have been deleted", category.Name), nil
}

func (s *GalleryService) editCategory(ctx context.Context, change CategoryChange) ([]string, error) {
	category, err := s.mustFindCategory(ctx, change.ID)
	if err != nil {
		return nil, err
	}

	var messages []string
	dirty := false

	name := strings.TrimSpace(change.Name)
	if name != "" && name != category.Name {
		messages = append(messages, fmt.Sprintf("Category names changed: '%s' changed to '%s'", category.Name, name))
		category.Name = name
		slug, err := s.uniqueSlug(ctx, name)
		if err != nil {
			return nil, err
		}
		category.Slug = slug
		dirty = true
	}

	if change.Description != category.Description {
		messages = append(messages, fmt.Sprintf("Category %s's description has been updated", category.Name))
		category.Description = change.Description
		dirty = true
	}

	if dirty {
		if err := s.categoryRepo.Update(ctx, category); err != nil {
			return nil, err
		}
	}

	return messages, nil
}

// UpdateCategory applies a batch of picture add, edit, and delete changes to
// one album.
func (s *GalleryService) UpdateCategory(ctx context.Context, user *entity.User, categoryID uint64, changes []ImageChange) ([]string, error) {
	category, err := s.mustFindCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	var messages []string

	for _, change := range changes {
		switch {
		case change.ID == 0:
			if change.Upload == nil {
				continue
			}
			msg, err := s.addImage(ctx, category, change)
			if err != nil {
				return nil, err
			}
			messages = append(messages, msg)

		case change.Delete:
			image, err := s.mustFindImage(ctx, change.ID)
			if err != nil {
				return nil, err
			}
			if err := s.removeImage(ctx, image); err != nil {
				return nil, err
			}
			messages = append(messages, fmt.Sprintf(
				"Picture %s deleted from \"%s\" category", path.Base(image.Filename), category.Name,
			))

		default:
			msg, err := s.editImage(ctx, change)
			if err != nil {
				return nil, err
			}
			if msg != "" {
				messages = append(messages, msg)
			}
		}
	}

	if len(messages) == 0 {
		return []string{"No changes made"}, nil
	}

	for _, msg := range messages {
		s.logActivity(ctx, fmt.Sprintf("%s by admin user %s", msg, user.Username))
	}
	s.flushCache(ctx)

	return messages, nil
}

func (s *GalleryService) addImage(ctx context.Context, category *entity.Category, change ImageChange) (string, error) {
	stored, err := s.media.Save(change.Upload.Filename, change.Upload.Reader)
	if err != nil {
		return "", err
	}

	image := &entity.Image{
		CategoryID: category.ID,
		Filename:   stored,
		Caption:    change.Caption,
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		s.removeStoredFile(stored)
		return "", err
	}

	return fmt.Sprintf("Picture %s has been added", change.Upload.Filename), nil
}

func (s *GalleryService) editImage(ctx context.Context, change ImageChange) (string, error) {
	image, err := s.mustFindImage(ctx, change.ID)
	if err != nil {
		return "", err
	}

	displayName := path.Base(image.Filename)
	dirty := false

	if change.Upload != nil {
		stored, err := s.media.Save(change.Upload.Filename, change.Upload.Reader)
		if err != nil {
			return "", err
		}
		s.removeStoredFile(image.Filename)
		image.Filename = stored
		displayName = change.Upload.Filename
		dirty = true
	}

	if change.Caption != image.Caption {
		image.Caption = change.Caption
		dirty = true
	}

	if !dirty {
		return "", nil
	}

	if err := s.imageRepo.Update(ctx, image); err != nil {
		return "", err
	}

	return fmt.Sprintf("Picture %s has been edited", displayName), nil
}

func (s *GalleryService) removeImage(ctx context.Context, image *entity.Image) error {
	if err := s.imageRepo.Delete(ctx, image.ID); err != nil {
		return err
	}
	s.removeStoredFile(image.Filename)
	return nil
}

func (s *GalleryService) removeStoredFile(stored string) {
	if err := s.media.Remove(stored); err != nil {
		s.logger.WithError(err).WithField("filename", stored).Warn("media file removal failed")
	}
}

// RunMediaPruneBatch deletes media files no picture record references and
// returns how many it removed. Orphans accumulate when a process dies
// between a file write and the matching row write.
func (s *GalleryService) RunMediaPruneBatch(ctx context.Context) (int, error) {
	stored, err := s.media.List()
	if err != nil {
		return 0, err
	}

	referenced, err := s.imageRepo.ListFilenames(ctx)
	if err != nil {
		return 0, err
	}

	keep := make(map[string]struct{}, len(referenced))
	for _, filename := range referenced {
		keep[filename] = struct{}{}
	}

	removed := 0
	for _, filename := range stored {
		if _, ok := keep[filename]; ok {
			continue
		}
		if err := s.media.Remove(filename); err != nil {
			s.logger.WithError(err).WithField("filename", filename).Warn("orphan media removal failed")
			continue
		}
		s.logger.WithField("filename", filename).Info("orphan media file removed")
		removed++
	}

	return removed, nil
}

func (s *GalleryService) mustFindCategory(ctx context.Context, id uint64) (*entity.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: no category with id %d", ErrCategoryNotFound, id)
	}
	return category, nil
}

func (s *GalleryService) mustFindImage(ctx context.Context, id uint64) (*entity.Image, error) {
	image, err := s.imageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, fmt.Errorf("%w: no picture with id %d", ErrImageNotFound, id)
	}
	return image, nil
}

func (s *GalleryService) flushCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Flush(ctx)
	}
}

func (s *GalleryService) logActivity(ctx context.Context, message string) {
	err := s.activityRepo.Create(ctx, &entity.ActivityLog{
		Log:       message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).Warn("activity log write failed")
	}
}

// uniqueSlug builds a URL slug from a category name, suffixing a counter on
// collision with an existing category. The suffixed form stays within the
// slug length limit too.
func (s *GalleryService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)

	slug := base
	for i := 2; ; i++ {
		existing, err := s.categoryRepo.FindBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return slug, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSlugLength {
			trimmed = strings.Trim(trimmed[:maxSlugLength-len(suffix)], "-")
		}
		slug = trimmed + suffix
	}
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	return slug
}
