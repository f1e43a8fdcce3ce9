package category

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type CreateCategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateCategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
