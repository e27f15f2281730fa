package models

import "time"

// BlogPost is an article on the public blog.
type BlogPost struct {
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title" validate:"required,max=200"`
	Slug      string    `json:"slug" yaml:"slug"`
	Excerpt   string    `json:"excerpt" yaml:"excerpt"`
	Content   string    `json:"content" yaml:"content"`
	Image     string    `json:"image" yaml:"image"`
	Author    string    `json:"author" yaml:"author"`
	AuthorID  string    `json:"authorId" yaml:"authorId"`
	Date      string    `json:"date" yaml:"date"`
	Category  string    `json:"category" yaml:"category"`
}

// BlogPostPatch is a partial update for a blog post.
type BlogPostPatch struct {
	Title    *string `json:"title,omitempty"`
	Excerpt  *string `json:"excerpt,omitempty"`
	Content  *string `json:"content,omitempty"`
	Image    *string `json:"image,omitempty"`
	Author   *string `json:"author,omitempty"`
	AuthorID *string `json:"authorId,omitempty"`
	Date     *string `json:"date,omitempty"`
	Category *string `json:"category,omitempty"`
}

// Apply merges the patch into b and reports whether the title changed.
func (patch BlogPostPatch) Apply(b *BlogPost) (titleChanged bool) {
	if patch.Title != nil && *patch.Title != b.Title {
		b.Title = *patch.Title
		titleChanged = true
	}
	if patch.Excerpt != nil {
		b.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		b.Content = *patch.Content
	}
	if patch.Image != nil {
		b.Image = *patch.Image
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.AuthorID != nil {
		b.AuthorID = *patch.AuthorID
	}
	if patch.Date != nil {
		b.Date = *patch.Date
	}
	if patch.Category != nil {
		b.Category = *patch.Category
	}
	return titleChanged
}

// DashboardStats are the aggregate counts shown on the admin dashboard.
type DashboardStats struct {
	TotalProperties int `json:"totalProperties" yaml:"totalProperties"`
	ActiveLeads     int `json:"activeLeads" yaml:"activeLeads"`
	TotalAgents     int `json:"totalAgents" yaml:"totalAgents"`
	TotalUsers      int `json:"totalUsers" yaml:"totalUsers"`
}
