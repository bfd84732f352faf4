// Package apitest provides an in-memory implementation of the blog API
// for tests and local development. It serves the same routes and
// {code, msg, data} envelope as the real backend and counts requests per
// route so tests can assert memoization behavior.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/pillar-dev/pillar/pkg/api"
)

// Server is a fake blog API backed by in-memory fixtures.
type Server struct {
	mu sync.Mutex

	columns     []api.Column
	posts       map[string]api.Post
	postOrder   []string
	usersByTok  map[string]api.User
	tokByCreds  map[string]string
	hits        map[string]int
	nextID      int
	failNextMsg string

	router chi.Router
}

// New creates an empty fake API. Populate it with AddColumn, AddPost and
// AddUser before serving requests.
func New() *Server {
	s := &Server{
		posts:      make(map[string]api.Post),
		usersByTok: make(map[string]api.User),
		tokByCreds: make(map[string]string),
		hits:       make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/columns", s.handleColumns)
	r.Get("/columns/{cid}", s.handleColumn)
	r.Get("/columns/{cid}/posts", s.handleColumnPosts)
	r.Get("/posts/{id}", s.handlePost)
	r.Post("/posts", s.handleCreatePost)
	r.Patch("/posts/{id}", s.handleUpdatePost)
	r.Delete("/posts/{id}", s.handleDeletePost)
	r.Get("/user/current", s.handleCurrentUser)
	r.Post("/user/login", s.handleLogin)
	r.Post("/upload", s.handleUpload)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddColumn seeds a column. Order of calls is the order GET /columns
// returns.
func (s *Server) AddColumn(c api.Column) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = append(s.columns, c)
}

// AddPost seeds a post.
func (s *Server) AddPost(p api.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; !ok {
		s.postOrder = append(s.postOrder, p.ID)
	}
	s.posts[p.ID] = p
}

// AddUser registers a login credential and the profile its token resolves
// to.
func (s *Server) AddUser(email, password, token string, u api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokByCreds[email+":"+password] = token
	s.usersByTok[token] = u
}

// Hits returns how many requests the given route pattern received, e.g.
// "GET /columns/{cid}".
func (s *Server) Hits(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[pattern]
}

// FailNext makes the next request fail with a 503 envelope carrying msg.
func (s *Server) FailNext(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextMsg = msg
}

func (s *Server) record(pattern string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[pattern]++
	if s.failNextMsg != "" {
		s.failNextMsg = ""
		return false
	}
	return true
}

func (s *Server) failing(w http.ResponseWriter, pattern string) bool {
	if s.record(pattern) {
		return false
	}
	writeEnvelope(w, http.StatusServiceUnavailable, 503, "injected failure", nil)
	return true
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "GET /columns") {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("currentPage"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 6
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := (page - 1) * size
	end := start + size
	if start > len(s.columns) {
		start = len(s.columns)
	}
	if end > len(s.columns) {
		end = len(s.columns)
	}

	writeEnvelope(w, http.StatusOK, 0, "", api.ColumnList{
		Count:       len(s.columns),
		CurrentPage: page,
		PageSize:    size,
		List:        append([]api.Column{}, s.columns[start:end]...),
	})
}

func (s *Server) handleColumn(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "GET /columns/{cid}") {
		return
	}

	cid := chi.URLParam(r, "cid")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.columns {
		if c.ID == cid {
			writeEnvelope(w, http.StatusOK, 0, "", c)
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, 404, "column not found", nil)
}

func (s *Server) handleColumnPosts(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "GET /columns/{cid}/posts") {
		return
	}

	cid := chi.URLParam(r, "cid")

	s.mu.Lock()
	defer s.mu.Unlock()

	list := []api.Post{}
	for _, id := range s.postOrder {
		p := s.posts[id]
		if p.Column == cid {
			// List views carry no content body, matching the real API.
			p.Content = ""
			list = append(list, p)
		}
	}
	writeEnvelope(w, http.StatusOK, 0, "", api.PostList{Count: len(list), List: list})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "GET /posts/{id}") {
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, 404, "post not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, 0, "", p)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "POST /posts") {
		return
	}
	if !s.authorized(r) {
		writeEnvelope(w, http.StatusUnauthorized, 401, "token invalid", nil)
		return
	}

	var np api.NewPost
	if err := json.NewDecoder(r.Body).Decode(&np); err != nil {
		writeEnvelope(w, http.StatusBadRequest, 422, "invalid body", nil)
		return
	}
	if np.Title == "" || np.Column == "" {
		writeEnvelope(w, http.StatusBadRequest, 422, "title and column required", nil)
		return
	}

	s.mu.Lock()
	s.nextID++
	p := api.Post{
		ID:      fmt.Sprintf("p%d", s.nextID),
		Title:   np.Title,
		Excerpt: np.Excerpt,
		Content: np.Content,
		Image:   np.Image,
		Column:  np.Column,
	}
	if np.Author != "" {
		p.Author = &api.Author{ID: np.Author}
	}
	s.posts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, 0, "", p)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "PATCH /posts/{id}") {
		return
	}
	if !s.authorized(r) {
		writeEnvelope(w, http.StatusUnauthorized, 401, "token invalid", nil)
		return
	}

	id := chi.URLParam(r, "id")

	var patch api.PostPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeEnvelope(w, http.StatusBadRequest, 422, "invalid body", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, 404, "post not found", nil)
		return
	}
	if patch.Title != "" {
		p.Title = patch.Title
	}
	if patch.Excerpt != "" {
		p.Excerpt = patch.Excerpt
	}
	if patch.Content != "" {
		p.Content = patch.Content
	}
	if patch.Image != nil {
		p.Image = patch.Image
	}
	s.posts[id] = p
	writeEnvelope(w, http.StatusOK, 0, "", p)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "DELETE /posts/{id}") {
		return
	}
	if !s.authorized(r) {
		writeEnvelope(w, http.StatusUnauthorized, 401, "token invalid", nil)
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, 404, "post not found", nil)
		return
	}
	delete(s.posts, id)
	for i, pid := range s.postOrder {
		if pid == id {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
	writeEnvelope(w, http.StatusOK, 0, "", p)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "GET /user/current") {
		return
	}

	s.mu.Lock()
	u, ok := s.usersByTok[bearerToken(r)]
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, 401, "token invalid", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, 0, "", u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "POST /user/login") {
		return
	}

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeEnvelope(w, http.StatusBadRequest, 422, "invalid body", nil)
		return
	}

	s.mu.Lock()
	token, ok := s.tokByCreds[creds.Email+":"+creds.Password]
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, 401, "wrong email or password", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, 0, "", map[string]string{"token": token})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, "POST /upload") {
		return
	}
	if !s.authorized(r) {
		writeEnvelope(w, http.StatusUnauthorized, 401, "token invalid", nil)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeEnvelope(w, http.StatusBadRequest, 422, "invalid multipart body", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, 422, "no file provided", nil)
		return
	}
	file.Close()

	s.mu.Lock()
	s.nextID++
	img := api.Image{
		ID:  fmt.Sprintf("img%d", s.nextID),
		URL: "https://cdn.example.com/" + header.Filename,
	}
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, 0, "", img)
}

// authorized reports whether the request carries any bearer token known
// to the fixture set.
func (s *Server) authorized(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.usersByTok[bearerToken(r)]
	return ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	return strings.TrimPrefix(h, "Bearer ")
}

func writeEnvelope(w http.ResponseWriter, status, code int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code": code,
		"msg":  msg,
		"data": data,
	})
}
