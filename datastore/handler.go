package datastore

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Handler exposes the store over the REST surface the portal consumes.
type Handler struct {
	store *Store
}

// NewHandler creates a Handler over store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Routes returns a mux with all resource endpoints registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", h.UsersCollection)
	mux.HandleFunc("/users/", h.UserItem)
	mux.HandleFunc("/news", h.NewsCollection)
	mux.HandleFunc("/news/", h.NewsItem)
	return mux
}

// wireUser matches json-server 1.x output: the id field is a string.
type wireUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type wireNews struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	AuthorID int64           `json:"author_id"`
	Comments json.RawMessage `json:"comments"`
}

func toWireUser(u User) wireUser {
	return wireUser{ID: strconv.FormatInt(u.ID, 10), Name: u.Name, Email: u.Email}
}

func toWireNews(n News) wireNews {
	return wireNews{
		ID:       strconv.FormatInt(n.ID, 10),
		Title:    n.Title,
		Body:     n.Body,
		AuthorID: n.AuthorID,
		Comments: n.Comments,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// UsersCollection handles GET /users.
func (h *Handler) UsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	out := make([]wireUser, 0, len(users))
	for _, u := range users {
		out = append(out, toWireUser(u))
	}
	writeJSON(w, http.StatusOK, out)
}

// UserItem handles GET /users/{id}.
func (h *Handler) UserItem(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/users/")
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		statusError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWireUser(*u))
}

type createNewsRequest struct {
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	AuthorID int64           `json:"author_id"`
	Comments json.RawMessage `json:"comments"`
}

type patchNewsRequest struct {
	Title    *string          `json:"title"`
	Body     *string          `json:"body"`
	Comments *json.RawMessage `json:"comments"`
}

// NewsCollection handles /news for GET (list) and POST (create).
func (h *Handler) NewsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.store.ListNews(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		out := make([]wireNews, 0, len(items))
		for _, it := range items {
			out = append(out, toWireNews(it))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req createNewsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		created, err := h.store.CreateNews(r.Context(), News{
			Title:    req.Title,
			Body:     req.Body,
			AuthorID: req.AuthorID,
			Comments: req.Comments,
		})
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toWireNews(*created))

	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// NewsItem handles /news/{id} for GET, PATCH and DELETE.
func (h *Handler) NewsItem(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/news/")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		it, err := h.store.GetNews(r.Context(), id)
		if err != nil {
			statusError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toWireNews(*it))

	case http.MethodPatch:
		var req patchNewsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		it, err := h.store.UpdateNews(r.Context(), id, NewsUpdate{
			Title:    req.Title,
			Body:     req.Body,
			Comments: req.Comments,
		})
		if err != nil {
			statusError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toWireNews(*it))

	case http.MethodDelete:
		if err := h.store.DeleteNews(r.Context(), id); err != nil {
			statusError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func resourceID(w http.ResponseWriter, r *http.Request, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		http.NotFound(w, r)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func statusError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
