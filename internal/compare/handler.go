package compare

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arunkumar2k5/clapclient/internal/auth"
	"github.com/arunkumar2k5/clapclient/internal/parts"
)

type Handler struct {
	Service *Service
	Store   *Store
}

func NewHandler(service *Service, store *Store) *Handler {
	return &Handler{Service: service, Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/compare", h.compare)
	rg.POST("/compare/csv", h.compareCSV)
	rg.GET("/batches", h.listBatches)
	rg.GET("/batches/:id", h.getBatch)
}

type compareReq struct {
	Parts    []string `json:"parts"`
	Generate bool     `json:"generate"`
}

func (h *Handler) compare(c *gin.Context) {
	var req compareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.Parts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parts is required"})
		return
	}

	res, err := h.Service.CompareParts(c.Request.Context(), req.Parts, "Manual entry", req.Generate)
	if err != nil {
		// One opaque message; catalog-level failures already degraded
		// into placeholder records before this point.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	batchID := h.saveBatch(c, "manual", []*Result{res})
	c.JSON(http.StatusOK, gin.H{"batch_id": batchID, "result": res})
}

func (h *Handler) compareCSV(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	generate := c.PostForm("generate") != "false"

	rows, err := parts.ParseBatchCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to parse csv: " + err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid component data found in the uploaded csv"})
		return
	}

	results := h.Service.ProcessBatch(c.Request.Context(), rows, generate)

	source := "csv"
	if header != nil && header.Filename != "" {
		source = "csv:" + header.Filename
	}
	batchID := h.saveBatch(c, source, results)

	c.JSON(http.StatusOK, gin.H{"batch_id": batchID, "results": results})
}

func (h *Handler) listBatches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	batches, err := h.Store.ListBatches(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

func (h *Handler) getBatch(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	batch, results, err := h.Store.GetBatch(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch": batch, "results": results})
}

// saveBatch persists and returns the batch id. Persistence failures are
// logged but never fail the request: the comparison itself already
// succeeded.
func (h *Handler) saveBatch(c *gin.Context, source string, results []*Result) string {
	if h.Store == nil {
		return ""
	}

	userID := ""
	if claims := auth.MustGetClaims(c); claims != nil {
		userID = claims.UserID
	}

	batchID, err := h.Store.SaveBatch(c.Request.Context(), userID, source, results)
	if err != nil {
		log.Printf("[compare] save batch: %v", err)
		return ""
	}
	return batchID
}
