package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const maxCategoryNameLength = 100

// CategoryChangeRequest is one row of the staff album-listing form. A zero Id
// with a name creates a new category.
type CategoryChangeRequest struct {
	Id          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Delete      bool   `json:"delete"`
}

type SaveCategoriesRequest struct {
	Categories []CategoryChangeRequest `json:"categories"`
}

func NewSaveCategoriesRequestFromContext(ctx echo.Context) (*SaveCategoriesRequest, error) {
	var body SaveCategoriesRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	for i := range body.Categories {
		body.Categories[i].Name = strings.TrimSpace(body.Categories[i].Name)
		body.Categories[i].Description = strings.TrimSpace(body.Categories[i].Description)
	}

	return &body, nil
}

func (r *SaveCategoriesRequest) Validate() error {
	for i, change := range r.GetCategories() {
		if change.Id == 0 && change.Delete {
			return fmt.Errorf("categories[%d]: cannot delete a category without an id", i)
		}
		if change.Id == 0 && change.Name == "" && change.Description != "" {
			return fmt.Errorf("categories[%d]: name is required to create a category", i)
		}
		if len(change.Name) > maxCategoryNameLength {
			return fmt.Errorf("categories[%d]: name must be at most %d characters", i, maxCategoryNameLength)
		}
	}
	return nil
}

func (r *SaveCategoriesRequest) GetCategories() []CategoryChangeRequest {
	if r == nil {
		return nil
	}
	return r.Categories
}

// ImageChangeRequest is one row of the staff album-detail form, carried in
// the "changes" multipart value as JSON. PhotoKey names the multipart file
// part holding the upload for this row, when there is one.
type ImageChangeRequest struct {
	Id       uint64 `json:"id"`
	Caption  string `json:"caption"`
	Delete   bool   `json:"delete"`
	PhotoKey string `json:"photo_key"`
}

type UpdateCategoryRequest struct {
	Id      uint64
	Changes []ImageChangeRequest

	files map[string]*multipart.FileHeader
}

func NewUpdateCategoryRequestFromContext(ctx echo.Context) (*UpdateCategoryRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid category id")
	}

	req := &UpdateCategoryRequest{
		Id:    id,
		files: map[string]*multipart.FileHeader{},
	}

	raw := ctx.FormValue("changes")
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Changes); err != nil {
			return nil, fmt.Errorf("malformed changes payload: %w", err)
		}
	}

	form, err := ctx.MultipartForm()
	if err == nil && form != nil {
		for key, headers := range form.File {
			if len(headers) > 0 {
				req.files[key] = headers[0]
			}
		}
	}

	return req, nil
}

func (r *UpdateCategoryRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid category id")
	}

	for i, change := range r.GetChanges() {
		if change.Id == 0 && change.Delete {
			return fmt.Errorf("changes[%d]: cannot delete a picture without an id", i)
		}
		if change.Id == 0 && change.PhotoKey == "" {
			return fmt.Errorf("changes[%d]: a new picture needs an uploaded file", i)
		}
		if change.PhotoKey != "" {
			if _, ok := r.FileFor(change.PhotoKey); !ok {
				return fmt.Errorf("changes[%d]: no uploaded file named %q", i, change.PhotoKey)
			}
		}
	}

	return nil
}

func (r *UpdateCategoryRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

func (r *UpdateCategoryRequest) GetChanges() []ImageChangeRequest {
	if r == nil {
		return nil
	}
	return r.Changes
}

func (r *UpdateCategoryRequest) FileFor(key string) (*multipart.FileHeader, bool) {
	if r == nil {
		return nil, false
	}
	header, ok := r.files[key]
	return header, ok
}

type ListImagesRequest struct {
	Category string
}

func NewListImagesRequestFromContext(ctx echo.Context) *ListImagesRequest {
	return &ListImagesRequest{Category: strings.TrimSpace(ctx.QueryParam("category"))}
}

func (r *ListImagesRequest) GetCategory() string {
	if r == nil {
		return ""
	}
	return r.Category
}
