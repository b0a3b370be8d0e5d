package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"newsweb/api"
	"newsweb/feed"
	"newsweb/model"
	"newsweb/validate"
)

type listRow struct {
	Item       model.NewsItem
	AuthorName string
	CanEdit    bool
}

type sizeOption struct {
	Size     int
	Selected bool
}

type listData struct {
	Me          *model.User
	Query       string
	Errors      []string
	Page        feed.Page
	Rows        []listRow
	SizeOptions []sizeOption
	FirstURL    string
	PrevURL     string
	NextURL     string
	LastURL     string
}

type commentRow struct {
	UserName  string
	Timestamp string
	Text      string
}

type detailData struct {
	Me          *model.User
	Item        *model.NewsItem
	AuthorName  string
	Comments    []commentRow
	Errors      []string
	CanEdit     bool
	CommentText string
}

type createData struct {
	Me     *model.User
	Title  string
	Body   string
	Errors []string
}

type editData struct {
	Me      *model.User
	ID      model.ID
	Title   string
	Body    string
	Errors  []string
	Blocked bool
}

type loginData struct {
	Me     *model.User
	Users  []model.User
	Errors []string
}

type basicData struct {
	Me     *model.User
	Errors []string
}

func userNames(users []model.User) map[model.ID]string {
	names := make(map[model.ID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}

func displayName(names map[model.ID]string, id model.ID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("User #%d", id)
}

func listURL(query string, page, size int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(size))
	return "/news?" + v.Encode()
}

// loadUsersAndNews fetches both collections concurrently and joins before
// rendering, so a torn-down request cancels whichever call is still in
// flight.
func (s *Server) loadUsersAndNews(ctx context.Context) ([]model.User, []model.NewsItem, error) {
	var (
		users []model.User
		news  []model.NewsItem
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.client.ListUsers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		news, err = s.client.ListNews(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return users, news, nil
}

func (s *Server) loadUsersAndItem(ctx context.Context, id model.ID) ([]model.User, *model.NewsItem, error) {
	var (
		users []model.User
		item  *model.NewsItem
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.client.ListUsers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		item, err = s.client.GetNews(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return users, item, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if !feed.ValidPageSize(size) {
		size = s.pageSize
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	data := listData{Me: me, Query: query}
	for _, opt := range feed.PageSizes {
		data.SizeOptions = append(data.SizeOptions, sizeOption{Size: opt, Selected: opt == size})
	}

	users, news, err := s.loadUsersAndNews(r.Context())
	if err != nil {
		data.Errors = []string{err.Error()}
		data.Page = feed.Paginate(nil, 1, size)
		s.render(w, http.StatusOK, "list.html", data)
		return
	}

	shaped := feed.Paginate(feed.SortNewest(feed.Filter(news, query)), page, size)
	names := userNames(users)

	for _, item := range shaped.Items {
		data.Rows = append(data.Rows, listRow{
			Item:       item,
			AuthorName: displayName(names, item.AuthorID),
			CanEdit:    me != nil && me.ID == item.AuthorID,
		})
	}
	data.Page = shaped
	data.FirstURL = listURL(query, 1, size)
	data.PrevURL = listURL(query, shaped.Number-1, size)
	data.NextURL = listURL(query, shaped.Number+1, size)
	data.LastURL = listURL(query, shaped.Count, size)

	s.render(w, http.StatusOK, "list.html", data)
}

func itemID(r *http.Request) (model.ID, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return model.ID(id), true
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	id, ok := itemID(r)
	if !ok {
		s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
		return
	}

	users, item, err := s.loadUsersAndItem(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
			return
		}
		s.render(w, http.StatusOK, "error.html", basicData{Me: me, Errors: []string{err.Error()}})
		return
	}

	s.render(w, http.StatusOK, "detail.html", s.buildDetail(me, users, item, nil, ""))
}

func (s *Server) buildDetail(me *model.User, users []model.User, item *model.NewsItem, errs []string, commentText string) detailData {
	names := userNames(users)
	data := detailData{
		Me:          me,
		Item:        item,
		AuthorName:  displayName(names, item.AuthorID),
		Errors:      errs,
		CanEdit:     me != nil && me.ID == item.AuthorID,
		CommentText: commentText,
	}
	for _, c := range feed.SortComments(item.Comments) {
		data.Comments = append(data.Comments, commentRow{
			UserName:  displayName(names, c.UserID),
			Timestamp: formatTimestamp(c.Timestamp),
			Text:      c.Text,
		})
	}
	return data
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	id, ok := itemID(r)
	if !ok {
		s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
		return
	}

	users, item, err := s.loadUsersAndItem(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
			return
		}
		s.render(w, http.StatusOK, "error.html", basicData{Me: me, Errors: []string{err.Error()}})
		return
	}

	text := r.FormValue("text")
	if errs := validate.Comment(text); len(errs) > 0 {
		s.render(w, http.StatusOK, "detail.html", s.buildDetail(me, users, item, errs, text))
		return
	}
	if me == nil {
		s.render(w, http.StatusOK, "detail.html",
			s.buildDetail(me, users, item, []string{"Please login to comment."}, text))
		return
	}

	// Read-modify-write: the whole comments array goes back, previous
	// entries plus the new one.
	comments := make([]model.Comment, 0, len(item.Comments)+1)
	comments = append(comments, item.Comments...)
	comments = append(comments, model.NewComment(item.Comments, me.ID, strings.TrimSpace(text)))

	updated, err := s.client.PatchNews(r.Context(), item.ID, api.NewsPatch{Comments: &comments})
	if err != nil {
		s.render(w, http.StatusOK, "detail.html", s.buildDetail(me, users, item, []string{err.Error()}, text))
		return
	}

	// The server's representation is the new authoritative state.
	s.render(w, http.StatusOK, "detail.html", s.buildDetail(me, users, updated, nil, ""))
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	if me == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, "create.html", createData{Me: me})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	if me == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	title := r.FormValue("title")
	body := r.FormValue("body")

	if errs := validate.News(title, body); len(errs) > 0 {
		s.render(w, http.StatusOK, "create.html", createData{Me: me, Title: title, Body: body, Errors: errs})
		return
	}

	_, err := s.client.CreateNews(r.Context(), api.CreateNewsPayload{
		Title:    strings.TrimSpace(title),
		Body:     strings.TrimSpace(body),
		AuthorID: me.ID,
		Comments: []model.Comment{},
	})
	if err != nil {
		s.render(w, http.StatusOK, "create.html",
			createData{Me: me, Title: title, Body: body, Errors: []string{err.Error()}})
		return
	}

	http.Redirect(w, r, "/news", http.StatusSeeOther)
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	if me == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	id, ok := itemID(r)
	if !ok {
		s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
		return
	}

	item, err := s.client.GetNews(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
			return
		}
		s.render(w, http.StatusOK, "error.html", basicData{Me: me, Errors: []string{err.Error()}})
		return
	}

	if me.ID != item.AuthorID {
		s.render(w, http.StatusForbidden, "edit.html", editData{Me: me, ID: item.ID, Blocked: true})
		return
	}

	s.render(w, http.StatusOK, "edit.html", editData{Me: me, ID: item.ID, Title: item.Title, Body: item.Body})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	if me == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	id, ok := itemID(r)
	if !ok {
		s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
		return
	}

	// The authorization check runs again on submit; the identity or the item
	// may have changed since the form loaded.
	item, err := s.client.GetNews(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
			return
		}
		s.render(w, http.StatusOK, "error.html", basicData{Me: me, Errors: []string{err.Error()}})
		return
	}
	if me.ID != item.AuthorID {
		s.render(w, http.StatusForbidden, "edit.html", editData{Me: me, ID: item.ID, Blocked: true})
		return
	}

	title := r.FormValue("title")
	body := r.FormValue("body")
	if errs := validate.News(title, body); len(errs) > 0 {
		s.render(w, http.StatusOK, "edit.html",
			editData{Me: me, ID: item.ID, Title: title, Body: body, Errors: errs})
		return
	}

	newTitle := strings.TrimSpace(title)
	newBody := strings.TrimSpace(body)
	if _, err := s.client.PatchNews(r.Context(), item.ID, api.NewsPatch{Title: &newTitle, Body: &newBody}); err != nil {
		s.render(w, http.StatusOK, "edit.html",
			editData{Me: me, ID: item.ID, Title: title, Body: body, Errors: []string{err.Error()}})
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/news/%d", item.ID), http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	id, ok := itemID(r)
	if !ok {
		s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
		return
	}

	item, err := s.client.GetNews(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			s.render(w, http.StatusNotFound, "notfound.html", basicData{Me: me})
			return
		}
		s.render(w, http.StatusOK, "error.html", basicData{Me: me, Errors: []string{err.Error()}})
		return
	}
	if me == nil || me.ID != item.AuthorID {
		http.Error(w, "Only the author can delete this news item.", http.StatusForbidden)
		return
	}

	if err := s.client.DeleteNews(r.Context(), id); err != nil {
		s.render(w, http.StatusOK, "error.html", basicData{Me: me, Errors: []string{err.Error()}})
		return
	}

	// No optimistic removal: redirect back and reload the full list.
	http.Redirect(w, r, "/news", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	me := s.idents.Get()
	data := loginData{Me: me}

	users, err := s.client.ListUsers(r.Context())
	if err != nil {
		data.Errors = []string{err.Error()}
	}
	data.Users = users

	s.render(w, http.StatusOK, "login.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	rawID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil {
		s.renderLoginError(w, r, "Select a user to continue.")
		return
	}

	users, err := s.client.ListUsers(r.Context())
	if err != nil {
		s.renderLoginError(w, r, err.Error())
		return
	}

	for _, u := range users {
		if u.ID == model.ID(rawID) {
			if err := s.idents.Set(u); err != nil {
				s.renderLoginError(w, r, err.Error())
				return
			}
			http.Redirect(w, r, "/news", http.StatusSeeOther)
			return
		}
	}
	s.renderLoginError(w, r, "Select a user to continue.")
}

func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, msg string) {
	data := loginData{Me: s.idents.Get(), Errors: []string{msg}}
	if users, err := s.client.ListUsers(r.Context()); err == nil {
		data.Users = users
	}
	s.render(w, http.StatusOK, "login.html", data)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.idents.Clear(); err != nil {
		s.render(w, http.StatusOK, "error.html", basicData{Errors: []string{err.Error()}})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
