package server

import (
	"github.com/gofiber/fiber/v2"
)

// ProfileFollow handles GET /:username/follow/
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if _, err := s.followService.Follow(c.UserContext(), viewerID(c), username); err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect(profileURL(username), fiber.StatusFound)
}

// ProfileUnfollow handles GET /:username/unfollow/. A missing edge is a 404.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if _, err := s.followService.Unfollow(c.UserContext(), viewerID(c), username); err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect(profileURL(username), fiber.StatusFound)
}
