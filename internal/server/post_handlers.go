package server

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"quill/internal/models"
	"quill/internal/render"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm is the parsed multipart body of the post form.
type postForm struct {
	Text       string
	GroupID    *uint
	Image      *service.ImageUpload
	ClearImage bool
	Errors     map[string]string
	file       multipart.File
}

func (f *postForm) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

func (f *postForm) values() render.PostForm {
	form := render.PostForm{Text: f.Text}
	if f.GroupID != nil {
		form.GroupID = *f.GroupID
	}
	return form
}

func parsePostForm(c *fiber.Ctx) (*postForm, error) {
	form := &postForm{
		Text:       c.FormValue("text"),
		ClearImage: c.FormValue("image-clear") != "",
		Errors:     map[string]string{},
	}

	if raw := strings.TrimSpace(c.FormValue("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			form.Errors["group"] = "Select a valid choice."
		} else {
			gid := uint(id)
			form.GroupID = &gid
		}
	}

	fh, err := c.FormFile("image")
	if err == nil && fh.Size > 0 {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		form.file = f
		form.Image = &service.ImageUpload{ContentType: fh.Header.Get(fiber.HeaderContentType), Body: f}
	}
	return form, nil
}

func (s *Server) renderPostForm(c *fiber.Ctx, status int, post *models.Post, form render.PostForm, errs map[string]string) error {
	groups, err := s.postService.ListGroups(c.UserContext())
	if err != nil {
		return s.renderServerError(c, err)
	}
	return s.renderStatus(c, status, render.TemplatePostForm, render.PostFormView{
		Base:   s.base(c, ""),
		Post:   post,
		Form:   form,
		Groups: groups,
		Errors: errs,
	})
}

// NewPostForm handles GET /new/
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, fiber.StatusOK, nil, render.PostForm{}, nil)
}

// CreatePost handles POST /new/
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form, err := parsePostForm(c)
	if err != nil {
		return s.renderServerError(c, err)
	}
	defer form.close()

	if len(form.Errors) > 0 {
		return s.renderPostForm(c, fiber.StatusBadRequest, nil, form.values(), form.Errors)
	}

	_, err = s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: viewerID(c),
		Text:     form.Text,
		GroupID:  form.GroupID,
		Image:    form.Image,
	})
	if err != nil {
		if fields, ok := formErrors(err); ok {
			return s.renderPostForm(c, fiber.StatusBadRequest, nil, form.values(), fields)
		}
		return s.respondError(c, err)
	}
	return c.Redirect("/", fiber.StatusFound)
}

// EditPostForm handles GET /:username/:post_id/edit/. Viewers other than
// the author are sent to the post page.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	postID, ok := parsePostID(c)
	if !ok {
		return s.NotFound(c)
	}
	username := c.Params("username")

	post, err := s.postService.GetEditablePost(c.UserContext(), viewerID(c), username, postID)
	if err != nil {
		if models.IsCode(err, models.CodeForbidden) {
			return c.Redirect(postURL(username, postID), fiber.StatusFound)
		}
		return s.respondError(c, err)
	}

	form := render.PostForm{Text: post.Text, Image: post.Image}
	if post.GroupID != nil {
		form.GroupID = *post.GroupID
	}
	return s.renderPostForm(c, fiber.StatusOK, post, form, nil)
}

// UpdatePost handles POST /:username/:post_id/edit/
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, ok := parsePostID(c)
	if !ok {
		return s.NotFound(c)
	}
	username := c.Params("username")

	post, err := s.postService.GetEditablePost(c.UserContext(), viewerID(c), username, postID)
	if err != nil {
		if models.IsCode(err, models.CodeForbidden) {
			return c.Redirect(postURL(username, postID), fiber.StatusFound)
		}
		return s.respondError(c, err)
	}

	form, err := parsePostForm(c)
	if err != nil {
		return s.renderServerError(c, err)
	}
	defer form.close()

	rerender := func(errs map[string]string) error {
		values := form.values()
		values.Image = post.Image
		return s.renderPostForm(c, fiber.StatusBadRequest, post, values, errs)
	}
	if len(form.Errors) > 0 {
		return rerender(form.Errors)
	}

	_, err = s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		ViewerID:   viewerID(c),
		Username:   username,
		PostID:     postID,
		Text:       form.Text,
		GroupID:    form.GroupID,
		Image:      form.Image,
		ClearImage: form.ClearImage,
	})
	if err != nil {
		if fields, ok := formErrors(err); ok {
			return rerender(fields)
		}
		return s.respondError(c, err)
	}
	return c.Redirect(postURL(username, postID), fiber.StatusFound)
}

func postURL(username string, postID uint) string {
	return fmt.Sprintf("/%s/%d/", username, postID)
}

func profileURL(username string) string {
	return "/" + username + "/"
}
