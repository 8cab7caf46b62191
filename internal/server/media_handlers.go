package server

import (
	"io"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServeMedia handles GET /media/* by streaming a stored image.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	key := c.Params("*")
	rc, err := s.blobs.Open(c.UserContext(), key)
	if err != nil {
		return s.respondError(c, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return s.renderServerError(c, err)
	}

	c.Type(strings.TrimPrefix(path.Ext(key), "."))
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Status(fiber.StatusOK).Send(data)
}
