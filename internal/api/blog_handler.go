package api

import (
	"errors"
	"net/http"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/service"

	"github.com/gin-gonic/gin"
)

// BlogHandler serves public blog content.
type BlogHandler struct {
	blogService service.BlogService
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(blogService service.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

func (h *BlogHandler) ListPosts(c *gin.Context) {
	posts, err := h.blogService.ListPosts(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch blog posts.")
		return
	}
	if posts == nil {
		posts = []domain.BlogPost{}
	}
	c.JSON(http.StatusOK, posts)
}

func (h *BlogHandler) GetPostBySlug(c *gin.Context) {
	post, err := h.blogService.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrBlogPostNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch blog post.")
		return
	}
	c.JSON(http.StatusOK, post)
}
