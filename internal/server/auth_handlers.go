package server

import (
	"log/slog"
	"time"

	"quill/internal/featureflags"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/render"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) signupOpen(c *fiber.Ctx) bool {
	return s.featureFlags.Enabled(featureflags.OpenSignup, viewerID(c))
}

// SignupForm handles GET /auth/signup/
func (s *Server) SignupForm(c *fiber.Ctx) error {
	if !s.signupOpen(c) {
		return s.NotFound(c)
	}
	return s.renderPage(c, render.TemplateSignup, render.SignupView{Base: s.base(c, "")})
}

// Signup handles POST /auth/signup/
func (s *Server) Signup(c *fiber.Ctx) error {
	if !s.signupOpen(c) {
		return s.NotFound(c)
	}

	in := service.SignupInput{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
		Password1: c.FormValue("password1"),
		Password2: c.FormValue("password2"),
	}
	user, err := s.userService.Signup(c.UserContext(), in)
	if err != nil {
		if fields, ok := formErrors(err); ok {
			return s.renderStatus(c, fiber.StatusBadRequest, render.TemplateSignup, render.SignupView{
				Base: s.base(c, ""),
				Form: render.SignupForm{
					FirstName: in.FirstName,
					LastName:  in.LastName,
					Username:  in.Username,
					Email:     in.Email,
				},
				Errors: fields,
			})
		}
		return s.respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user signed up", slog.Uint64("user_id", uint64(user.ID)))
	if err := s.startSession(c, user); err != nil {
		return s.renderServerError(c, err)
	}
	return c.Redirect("/", fiber.StatusFound)
}

// LoginForm handles GET /auth/login/
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.renderPage(c, render.TemplateLogin, render.LoginView{
		Base: s.base(c, ""),
		Next: safeNext(c.Query("next")),
	})
}

// Login handles POST /auth/login/
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	next := safeNext(c.FormValue("next"))

	user, err := s.userService.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		if models.IsCode(err, models.CodeUnauthenticated) {
			return s.renderStatus(c, fiber.StatusBadRequest, render.TemplateLogin, render.LoginView{
				Base:     s.base(c, ""),
				Username: username,
				Next:     next,
				Error:    "Invalid username or password.",
			})
		}
		return s.respondError(c, err)
	}

	if err := s.startSession(c, user); err != nil {
		return s.renderServerError(c, err)
	}
	return c.Redirect(next, fiber.StatusFound)
}

// Logout handles GET /auth/logout/
func (s *Server) Logout(c *fiber.Ctx) error {
	if sess := currentSession(c); sess != nil {
		if err := s.sessions.Revoke(c.UserContext(), sess); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session", slog.String("error", err.Error()))
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, expires, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}
