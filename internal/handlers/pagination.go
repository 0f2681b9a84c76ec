package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

const maxPageSize = 100

// PageResponse is the paginated list envelope.
type PageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// pageParams reads page and page_size; page_size is capped at 100.
func (h *Handler) pageParams(c *gin.Context) (repository.Page, bool) {
	p := repository.Page{Number: 1, Size: h.pageSize}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.SendError(c, http.StatusNotFound, utils.CodeResourceNotFound, "Resource not found", "Invalid page.", nil)
			return p, false
		}
		p.Number = n
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Size = min(n, maxPageSize)
		}
	}
	return p, true
}

// pageLink builds an absolute link to another page of the current list. The
// configured public base URL wins over the request's Host header.
func (h *Handler) pageLink(c *gin.Context, page int) *string {
	u := url.URL{Path: c.Request.URL.Path}
	if h.baseURL != nil {
		u.Scheme = h.baseURL.Scheme
		u.Host = h.baseURL.Host
		u.Path = strings.TrimSuffix(h.baseURL.Path, "/") + u.Path
	} else {
		u.Scheme = "http"
		u.Host = c.Request.Host
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			u.Scheme = "https"
		}
	}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func (h *Handler) newPage(c *gin.Context, p repository.Page, total int64, results interface{}) PageResponse {
	resp := PageResponse{Count: total, Results: results}
	if int64(p.Number*p.Size) < total {
		resp.Next = h.pageLink(c, p.Number+1)
	}
	if p.Number > 1 {
		resp.Previous = h.pageLink(c, p.Number-1)
	}
	return resp
}
