package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/rebk-studio/ms-go-studio/app/cache"
	"github.com/rebk-studio/ms-go-studio/app/factory"
	"github.com/rebk-studio/ms-go-studio/app/mapper"
	"github.com/rebk-studio/ms-go-studio/app/service"
	"github.com/rebk-studio/ms-go-studio/app/types"
)

type GalleryController struct {
	galleryService *service.GalleryService
	cache          *cache.GalleryCache
	logger         logrus.FieldLogger
}

// NewGalleryController wires the gallery handlers. galleryCache may be nil
// when no redis address is configured; public reads then hit the database
// every time.
func NewGalleryController(galleryService *service.GalleryService, galleryCache *cache.GalleryCache) *GalleryController {
	return &GalleryController{
		galleryService: galleryService,
		cache:          galleryCache,
		logger:         factory.NewModuleLogger("gallery-controller"),
	}
}

func (c *GalleryController) Menu(ctx echo.Context) error {
	if payload, ok := c.cached(ctx, cache.MenuKey()); ok {
		return ctx.JSONBlob(http.StatusOK, payload)
	}

	categories, err := c.galleryService.Menu(ctx.Request().Context())
	if err != nil {
		c.logger.WithError(err).Error("Gallery menu failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return c.writeCached(ctx, cache.MenuKey(), &types.MenuResponse{
		Categories: mapper.CategoriesToResponse(categories),
	})
}

func (c *GalleryController) Album(ctx echo.Context) error {
	slug := ctx.Param("slug")
	if payload, ok := c.cached(ctx, cache.AlbumKey(slug)); ok {
		return ctx.JSONBlob(http.StatusOK, payload)
	}

	category, images, err := c.galleryService.CategoryBySlug(ctx.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "album not found")
		}
		c.logger.WithError(err).Error("Gallery album failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return c.writeCached(ctx, cache.AlbumKey(slug), &types.AlbumResponse{
		Category: mapper.CategoryToResponse(category),
		Images:   mapper.ImagesToResponse(images),
	})
}

func (c *GalleryController) Images(ctx echo.Context) error {
	req := types.NewListImagesRequestFromContext(ctx)
	if payload, ok := c.cached(ctx, cache.ImagesKey(req.GetCategory())); ok {
		return ctx.JSONBlob(http.StatusOK, payload)
	}

	images, total, err := c.galleryService.Images(ctx.Request().Context(), req.GetCategory())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCategoryNotFound):
			return c.writeError(ctx, http.StatusNotFound, "category not found")
		default:
			c.logger.WithError(err).Error("Gallery images failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return c.writeCached(ctx, cache.ImagesKey(req.GetCategory()), &types.ImagesResponse{
		Images: mapper.ImagesToResponse(images),
		Total:  total,
	})
}

func (c *GalleryController) ListCategories(ctx echo.Context) error {
	listings, err := c.galleryService.ListCategories(ctx.Request().Context())
	if err != nil {
		c.logger.WithError(err).Error("List categories failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.StaffCategoriesResponse{
		Categories: mapper.CategoryListingsToResponse(listings),
	})
}

func (c *GalleryController) SaveCategories(ctx echo.Context) error {
	req, err := types.NewSaveCategoriesRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	changes := make([]service.CategoryChange, 0, len(req.GetCategories()))
	for _, change := range req.GetCategories() {
		changes = append(changes, service.CategoryChange{
			ID:          change.Id,
			Name:        change.Name,
			Description: change.Description,
			Delete:      change.Delete,
		})
	}

	messages, err := c.galleryService.SaveCategories(ctx.Request().Context(), staffUser(ctx), changes)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "category not found")
		}
		c.logger.WithError(err).Error("Save categories failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.MessagesResponse{Messages: messages})
}

func (c *GalleryController) UpdateCategory(ctx echo.Context) error {
	req, err := types.NewUpdateCategoryRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	changes := make([]service.ImageChange, 0, len(req.GetChanges()))
	var closers []func()
	defer func() {
		for _, closeFile := range closers {
			closeFile()
		}
	}()

	for _, change := range req.GetChanges() {
		serviceChange := service.ImageChange{
			ID:      change.Id,
			Caption: change.Caption,
			Delete:  change.Delete,
		}

		if change.PhotoKey != "" {
			header, _ := req.FileFor(change.PhotoKey)
			file, err := header.Open()
			if err != nil {
				c.logger.WithError(err).Error("Uploaded file open failed")
				return c.writeError(ctx, http.StatusBadRequest, "unreadable uploaded file")
			}
			closers = append(closers, func() { file.Close() })
			serviceChange.Upload = &service.ImageUpload{
				Filename: header.Filename,
				Reader:   file,
			}
		}

		changes = append(changes, serviceChange)
	}

	messages, err := c.galleryService.UpdateCategory(ctx.Request().Context(), staffUser(ctx), req.GetId(), changes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			return c.writeError(ctx, http.StatusNotFound, "category not found")
		case errors.Is(err, service.ErrImageNotFound):
			return c.writeError(ctx, http.StatusNotFound, "picture not found")
		default:
			c.logger.WithError(err).Error("Update category failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.MessagesResponse{Messages: messages})
}

func (c *GalleryController) cached(ctx echo.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(ctx.Request().Context(), key)
}

func (c *GalleryController) writeCached(ctx echo.Context, key string, response interface{}) error {
	payload, err := json.Marshal(response)
	if err != nil {
		c.logger.WithError(err).Error("Response marshal failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	if c.cache != nil {
		c.cache.Set(ctx.Request().Context(), key, payload)
	}

	return ctx.JSONBlob(http.StatusOK, payload)
}

func (c *GalleryController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
