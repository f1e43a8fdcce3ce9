package blog

type CreateBlogDTO struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Content    string `json:"content"`
	CategoryID int64  `json:"category_id"`
	Image      string `json:"image"`
}

type UpdateBlogDTO struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Content    string `json:"content"`
	CategoryID int64  `json:"category_id"`
	Image      string `json:"image"`
}

type PublishBlogDTO struct {
	IsPublished bool `json:"is_published"`
}

type BlogsResponse struct {
	Blogs []*Blog `json:"blogs"`
}
