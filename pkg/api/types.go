package api

import "time"

// Roles a user can hold
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Auth Request/Response Types
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	HomeRegion  string `json:"home_region,omitempty"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	HomeRegion    string    `json:"home_region,omitempty"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	PostCount     int       `json:"post_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProfileResponse wraps a single user
type ProfileResponse struct {
	User User `json:"user"`
}

// Region is a destination that groups forum posts
type Region struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Description string `json:"description,omitempty"`
	PostCount   int    `json:"post_count"`
}

type RegionListResponse struct {
	Regions []Region `json:"regions"`
}

// Vote is a per-user like/dislike state on a post or comment
type Vote string

const (
	VoteNone    Vote = "none"
	VoteLike    Vote = "like"
	VoteDislike Vote = "dislike"
)

// Normalize maps the empty value to VoteNone
func (v Vote) Normalize() Vote {
	if v == "" {
		return VoteNone
	}
	return v
}

// Valid reports whether v is a known vote value
func (v Vote) Valid() bool {
	switch v.Normalize() {
	case VoteNone, VoteLike, VoteDislike:
		return true
	}
	return false
}

type VoteRequest struct {
	Value Vote `json:"value"`
}

// VoteResponse carries the server's view of a target after a vote
type VoteResponse struct {
	MyVote       Vote `json:"my_vote"`
	LikeCount    int  `json:"like_count"`
	DislikeCount int  `json:"dislike_count"`
}

// Post is a forum discussion thread scoped to a region
type Post struct {
	ID           string    `json:"id"`
	RegionID     string    `json:"region_id"`
	Region       *Region   `json:"region,omitempty"`
	Author       User      `json:"author"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags,omitempty"`
	ImageURLs    []string  `json:"image_urls,omitempty"`
	LikeCount    int       `json:"like_count"`
	DislikeCount int       `json:"dislike_count"`
	CommentCount int       `json:"comment_count"`
	MyVote       Vote      `json:"my_vote,omitempty"`
	IsEdited     bool      `json:"is_edited"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PostListResponse struct {
	Posts      []Post `json:"posts"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// PostQuery filters and pages the post list
type PostQuery struct {
	RegionID string
	Tag      string
	Search   string
	Sort     string // newest, top, active
	Page     int
	PageSize int
}

type CreatePostRequest struct {
	RegionID  string   `json:"region_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

type UpdatePostRequest struct {
	Title     *string  `json:"title,omitempty"`
	Content   *string  `json:"content,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// Comment is a reply to a post; it may carry one level of nested replies
type Comment struct {
	ID           string    `json:"id"`
	PostID       string    `json:"post_id"`
	ParentID     *string   `json:"parent_id,omitempty"`
	Author       User      `json:"author"`
	Content      string    `json:"content"`
	LikeCount    int       `json:"like_count"`
	DislikeCount int       `json:"dislike_count"`
	MyVote       Vote      `json:"my_vote,omitempty"`
	Replies      []Comment `json:"replies,omitempty"`
	IsEdited     bool      `json:"is_edited"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CommentListResponse struct {
	Comments   []Comment `json:"comments"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

type CreateCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// Notification types pushed by the backend
const (
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationBookingCancelled = "booking_cancelled"
	NotificationBookingReminder  = "booking_reminder"
	NotificationForumReply       = "forum_reply"
	NotificationForumComment     = "forum_comment"
	NotificationForumVote        = "forum_vote"
	NotificationPostVote         = "post_vote"
	NotificationRegionUpdate     = "region_update"
	NotificationSystem           = "system"
)

// Notification describes an action relevant to the user
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	PostID     string    `json:"post_id,omitempty"`
	CommentID  string    `json:"comment_id,omitempty"`
	BookingID  string    `json:"booking_id,omitempty"`
	RegionSlug string    `json:"region_slug,omitempty"`
	Actor      *User     `json:"actor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	TotalCount    int            `json:"total_count"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}

// UploadedFile is a stored attachment returned by the upload endpoint
type UploadedFile struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type UploadResponse struct {
	Files []UploadedFile `json:"files"`
}

// ErrorResponse is the backend's error body
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Error   string                 `json:"error,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
