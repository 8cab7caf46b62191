package server

import (
	"log/slog"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles GET|POST /:username/:post_id/comment/. Invalid input is
// dropped and the viewer always lands back on the post.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, ok := parsePostID(c)
	if !ok {
		return s.NotFound(c)
	}
	username := c.Params("username")

	post, err := s.commentService.ResolvePost(c.UserContext(), username, postID)
	if err != nil {
		return s.respondError(c, err)
	}

	if c.Method() == fiber.MethodPost {
		_, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
			AuthorID: viewerID(c),
			Username: username,
			PostID:   post.ID,
			Text:     c.FormValue("text"),
		})
		switch {
		case err == nil, models.IsCode(err, models.CodeValidation):
		case models.IsCode(err, models.CodeNotFound):
			return s.NotFound(c)
		default:
			middleware.Logger.ErrorContext(c.UserContext(), "failed to add comment",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.String("error", err.Error()),
			)
			return s.renderServerError(c, err)
		}
	}
	return c.Redirect(postURL(username, postID), fiber.StatusFound)
}
