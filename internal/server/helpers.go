package server

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"quill/internal/featureflags"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/render"

	"github.com/gofiber/fiber/v2"
)

const (
	localsUserID = "userID"
	localsViewer = "viewer"
	localsToken  = "session"
	loginPath    = "/auth/login/"
)

// Identity resolves the session cookie into the viewer. Missing, invalid and
// revoked sessions leave the request anonymous (userID 0).
func (s *Server) Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsUserID, uint(0))

		raw := c.Cookies(sessionCookie)
		if raw == "" {
			return c.Next()
		}

		session, err := s.sessions.Parse(c.UserContext(), raw)
		if err != nil {
			if !errors.Is(err, errInvalidSession) {
				middleware.Logger.WarnContext(c.UserContext(), "session check failed", slog.String("error", err.Error()))
			}
			return c.Next()
		}

		user, err := s.userService.GetUserByID(c.UserContext(), session.UserID)
		if err != nil {
			if !models.IsCode(err, models.CodeNotFound) {
				middleware.Logger.WarnContext(c.UserContext(), "session user lookup failed", slog.String("error", err.Error()))
			}
			return c.Next()
		}

		c.Locals(localsUserID, user.ID)
		c.Locals(localsViewer, user)
		c.Locals(localsToken, session)
		return c.Next()
	}
}

// LoginRequired redirects anonymous viewers to the login page.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if viewerID(c) == 0 {
			return redirectToLogin(c)
		}
		return c.Next()
	}
}

func viewerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localsUserID).(uint)
	return id
}

func viewer(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(localsViewer).(*models.User)
	return u
}

func currentSession(c *fiber.Ctx) *Session {
	sess, _ := c.Locals(localsToken).(*Session)
	return sess
}

// redirectToLogin sends the viewer to the login page with the full request
// URI, query string included, as next.
func redirectToLogin(c *fiber.Ctx) error {
	return c.Redirect(loginURL(c.OriginalURL()), fiber.StatusFound)
}

// loginURL query-encodes next, leaving slashes readable.
func loginURL(next string) string {
	return loginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// safeNext returns next when it is a local path and "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}

// parsePostID reads the :post_id route parameter.
func parsePostID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("post_id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) base(c *fiber.Ctx, title string) render.Base {
	v := viewer(c)
	var id uint
	if v != nil {
		id = v.ID
	}
	return render.Base{
		Viewer:     v,
		Title:      title,
		SignupOpen: s.featureFlags.Enabled(featureflags.OpenSignup, id),
	}
}

// renderStatus renders a page into memory and sends it with status.
func (s *Server) renderStatus(c *fiber.Ctx, status int, name string, data interface{}) error {
	body, err := s.renderer.Bytes(name, data)
	if err != nil {
		if name == render.Template500 {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}
		return s.renderServerError(c, err)
	}
	return sendHTML(c, status, body)
}

func (s *Server) renderPage(c *fiber.Ctx, name string, data interface{}) error {
	return s.renderStatus(c, fiber.StatusOK, name, data)
}

func sendHTML(c *fiber.Ctx, status int, body []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(body)
}

// NotFound renders the 404 page.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return s.renderStatus(c, fiber.StatusNotFound, render.Template404, render.ErrorView{Base: s.base(c, ""), Path: c.Path()})
}

func (s *Server) renderServerError(c *fiber.Ctx, err error) error {
	middleware.Logger.ErrorContext(c.UserContext(), "request failed",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return s.renderStatus(c, fiber.StatusInternalServerError, render.Template500, render.ErrorView{Base: s.base(c, "")})
}

// formErrors returns the per-field messages of a validation error. Errors
// not tied to a field are reported under "__all__".
func formErrors(err error) (map[string]string, bool) {
	if !models.IsCode(err, models.CodeValidation) {
		return nil, false
	}
	if fields := models.FieldErrors(err); len(fields) > 0 {
		return fields, true
	}
	var appErr *models.AppError
	errors.As(err, &appErr)
	return map[string]string{"__all__": appErr.Message}, true
}

// respondError maps an application error onto the page the viewer should see.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return s.NotFound(c)
	case models.CodeUnauthenticated:
		return redirectToLogin(c)
	case models.CodeForbidden:
		return c.Redirect("/", fiber.StatusFound)
	default:
		return s.renderServerError(c, err)
	}
}
