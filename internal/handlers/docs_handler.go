package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/smart-health-api/internal/docs"
)

func (h *Handler) OpenAPIYAML(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", docs.YAML())
}

func (h *Handler) OpenAPIJSON(c *gin.Context) {
	body, err := docs.JSON()
	if err != nil {
		h.fail(c, err, "API documentation")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
