package plagiarism

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"judgecore/pkg/utils/response"
)

// Handler exposes the plagiarism engine over HTTP, grounded on the
// teacher's gin controller style (internal/judge/controller) and
// check_router.py's health_check/check_semantic_code pair.
type Handler struct {
	pipeline *Pipeline
}

// NewHandler builds a Handler around pipeline.
func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// Health implements GET / and GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// SemanticCode implements POST /semantic-code: run the clustering pipeline
// over the posted batch of UserData and return per-problem copy clusters.
func (h *Handler) SemanticCode(c *gin.Context) {
	var body []UserData
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	results, err := h.pipeline.Run(c.Request.Context(), body)
	if err != nil {
		response.InternalServerError(c, err)
		return
	}
	if results == nil {
		results = []ProblemResult{}
	}

	response.Success(c, gin.H{"results": results})
}
