package api

import (
	"encoding/json"
	"fmt"
)

// Image is an uploaded picture embedded in columns, posts and users.
type Image struct {
	ID        string `json:"_id,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`

	// FitURL is an alternate size produced by the CDN, when available.
	FitURL string `json:"fitUrl,omitempty"`
}

// Column is a named content channel containing posts.
type Column struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Avatar      *Image `json:"avatar,omitempty"`
	Description string `json:"description"`
}

// User is a profile as the server shapes it. The login flag lives in the
// store, not on the wire.
type User struct {
	ID          string `json:"_id,omitempty"`
	NickName    string `json:"nickName,omitempty"`
	Email       string `json:"email,omitempty"`
	Avatar      *Image `json:"avatar,omitempty"`
	Description string `json:"description,omitempty"`

	// Column is the id of the user's own column, if they have one.
	Column string `json:"column,omitempty"`
}

// Author is a post's author as delivered by the server: either a bare id
// string (list endpoints) or an embedded user object (detail endpoints).
type Author struct {
	ID   string
	User *User
}

// Embedded reports whether the server delivered a full user object.
func (a *Author) Embedded() bool {
	return a != nil && a.User != nil
}

// UnmarshalJSON accepts both wire shapes.
func (a *Author) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.ID)
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("author: %w", err)
	}
	a.User = &u
	a.ID = u.ID
	return nil
}

// MarshalJSON writes the embedded user when present, the bare id otherwise.
func (a Author) MarshalJSON() ([]byte, error) {
	if a.User != nil {
		return json.Marshal(a.User)
	}
	return json.Marshal(a.ID)
}

// Post is an article belonging to one column.
type Post struct {
	ID        string  `json:"_id"`
	Title     string  `json:"title"`
	Excerpt   string  `json:"excerpt,omitempty"`
	Content   string  `json:"content,omitempty"`
	Image     *Image  `json:"image,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
	Column    string  `json:"column"`
	Author    *Author `json:"author,omitempty"`
}

// NewPost is the request body for creating a post.
type NewPost struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
	Content string `json:"content,omitempty"`
	Image   *Image `json:"image,omitempty"`
	Column  string `json:"column"`
	Author  string `json:"author,omitempty"`
}

// PostPatch is the request body for updating a post. Zero fields are
// omitted and left unchanged server-side.
type PostPatch struct {
	Title   string `json:"title,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
	Content string `json:"content,omitempty"`
	Image   *Image `json:"image,omitempty"`
}

// ColumnList is the paged response of GET /columns.
type ColumnList struct {
	Count       int      `json:"count"`
	CurrentPage int      `json:"currentPage"`
	PageSize    int      `json:"pageSize"`
	List        []Column `json:"list"`
}

// PostList is the response of GET /columns/{cid}/posts.
type PostList struct {
	Count int    `json:"count"`
	List  []Post `json:"list"`
}

// envelope is the uniform response wrapper. Only data is consumed on
// success; code and msg drive error construction.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// loginResponse is the data payload of POST /user/login.
type loginResponse struct {
	Token string `json:"token"`
}
