package validation

import "strings"

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RegisterForm struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	DisplayName     string `json:"display_name" validate:"omitempty,max=50"`
	HomeRegion      string `json:"home_region" validate:"omitempty,max=100"`
}

type ResetForm struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type ChangePasswordForm struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type EmailForm struct {
	Email string `json:"email" validate:"required,email"`
}

type PostForm struct {
	RegionID string   `json:"region_id" validate:"required"`
	Title    string   `json:"title" validate:"required,min=5,max=150"`
	Content  string   `json:"content" validate:"required,min=10,max=10000"`
	Tags     []string `json:"tags" validate:"max=10,dive,required,max=30"`
}

// PostEditForm validates only the fields being changed
type PostEditForm struct {
	Title   *string  `json:"title" validate:"omitnil,min=5,max=150"`
	Content *string  `json:"content" validate:"omitnil,min=10,max=10000"`
	Tags    []string `json:"tags" validate:"max=10,dive,required,max=30"`
}

type CommentForm struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// NormalizeTags trims, lowercases and dedupes tags, dropping empty ones
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
