package types

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// MessagesResponse carries the human-readable change messages produced by a
// staff gallery submission.
type MessagesResponse struct {
	Messages []string `json:"messages"`
}

type CategoryResponse struct {
	Id          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

type ImageResponse struct {
	Id         uint64 `json:"id"`
	CategoryId uint64 `json:"category_id"`
	Filename   string `json:"filename"`
	Caption    string `json:"caption"`
}

type MenuResponse struct {
	Categories []*CategoryResponse `json:"categories"`
}

type AlbumResponse struct {
	Category *CategoryResponse `json:"category"`
	Images   []*ImageResponse  `json:"images"`
}

type ImagesResponse struct {
	Images []*ImageResponse `json:"images"`
	Total  int64            `json:"total"`
}

type StaffCategoryResponse struct {
	Id          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	ImageCount  int64  `json:"image_count"`
}

type StaffCategoriesResponse struct {
	Categories []*StaffCategoryResponse `json:"categories"`
}
