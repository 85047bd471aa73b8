package mapper

import (
	"github.com/rebk-studio/ms-go-studio/app/entity"
	"github.com/rebk-studio/ms-go-studio/app/service"
	"github.com/rebk-studio/ms-go-studio/app/types"
)

func CategoryToResponse(item *entity.Category) *types.CategoryResponse {
	if item == nil {
		return nil
	}

	return &types.CategoryResponse{
		Id:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Slug:        item.Slug,
	}
}

func CategoriesToResponse(items []*entity.Category) []*types.CategoryResponse {
	result := make([]*types.CategoryResponse, 0, len(items))
	for _, item := range items {
		result = append(result, CategoryToResponse(item))
	}
	return result
}

func ImageToResponse(item *entity.Image) *types.ImageResponse {
	if item == nil {
		return nil
	}

	return &types.ImageResponse{
		Id:         item.ID,
		CategoryId: item.CategoryID,
		Filename:   item.Filename,
		Caption:    item.Caption,
	}
}

func ImagesToResponse(items []*entity.Image) []*types.ImageResponse {
	result := make([]*types.ImageResponse, 0, len(items))
	for _, item := range items {
		result = append(result, ImageToResponse(item))
	}
	return result
}

func CategoryListingToResponse(item *service.CategoryListing) *types.StaffCategoryResponse {
	if item == nil || item.Category == nil {
		return nil
	}

	return &types.StaffCategoryResponse{
		Id:          item.Category.ID,
		Name:        item.Category.Name,
		Description: item.Category.Description,
		Slug:        item.Category.Slug,
		ImageCount:  item.ImageCount,
	}
}

func CategoryListingsToResponse(items []*service.CategoryListing) []*types.StaffCategoryResponse {
	result := make([]*types.StaffCategoryResponse, 0, len(items))
	for _, item := range items {
		result = append(result, CategoryListingToResponse(item))
	}
	return result
}
