package server

import (
	"context"

	"quill/internal/featureflags"
	"quill/internal/pagination"
	"quill/internal/render"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /. The first page seen by anonymous viewers is served
// from the index cache.
func (s *Server) Index(c *fiber.Ctx) error {
	rawPage := c.Query("page")
	base := s.base(c, "")

	build := func(ctx context.Context) ([]byte, error) {
		page, err := s.feedService.IndexFeed(ctx, rawPage)
		if err != nil {
			return nil, err
		}
		return s.renderer.Bytes(render.TemplateIndex, render.IndexView{Base: base, Page: page})
	}

	var (
		body []byte
		err  error
	)
	if viewerID(c) == 0 && pagination.ParsePageNumber(rawPage) == 1 {
		body, err = s.indexCache.Fetch(c.UserContext(), build)
	} else {
		body, err = build(c.UserContext())
	}
	if err != nil {
		return s.respondError(c, err)
	}
	return sendHTML(c, fiber.StatusOK, body)
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.GroupFeed(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return s.respondError(c, err)
	}
	return s.renderPage(c, render.TemplateGroup, render.GroupView{
		Base:  s.base(c, feed.Group.Title),
		Group: feed.Group,
		Page:  feed.Page,
	})
}

// Profile handles GET /:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	id := viewerID(c)
	feed, err := s.feedService.AuthorFeed(c.UserContext(), id, c.Params("username"), c.Query("page"))
	if err != nil {
		return s.respondError(c, err)
	}
	return s.renderPage(c, render.TemplateProfile, render.ProfileView{
		Base:           s.base(c, feed.Author.Username),
		Author:         feed.Author,
		Page:           feed.Page,
		Following:      feed.Following,
		ShowStats:      s.featureFlags.Enabled(featureflags.FollowStats, id),
		FollowersCount: feed.FollowersCount,
		FollowingCount: feed.FollowingCount,
	})
}

// PostDetail handles GET /:username/:post_id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	postID, ok := parsePostID(c)
	if !ok {
		return s.NotFound(c)
	}
	detail, err := s.feedService.PostDetail(c.UserContext(), viewerID(c), c.Params("username"), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.renderPage(c, render.TemplatePost, render.PostView{
		Base:      s.base(c, detail.Post.String()),
		Post:      detail.Post,
		Comments:  detail.Comments,
		Following: detail.Following,
	})
}

// FollowIndex handles GET /follow/
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	page, err := s.feedService.FollowingFeed(c.UserContext(), viewerID(c), c.Query("page"))
	if err != nil {
		return s.respondError(c, err)
	}
	return s.renderPage(c, render.TemplateFollow, render.FollowView{Base: s.base(c, ""), Page: page})
}
