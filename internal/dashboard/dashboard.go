// Package dashboard wires the Boundary API onto HTTP routes: a gin
// server exposing the debug/analytics UI the way GhiaC-Agentize's
// routes.go wires debuger's pages onto a gin.Engine passed in by the host
// process, plus an SSE endpoint streaming import.start's job events.
package dashboard

import (
	"bufio"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatlab/corpus/internal/analytics"
	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/dashboard/pages"
	"github.com/chatlab/corpus/internal/importer"
)

// Handler wires the Boundary API onto a set of HTTP routes.
type Handler struct {
	api    *boundary.API
	logger zerolog.Logger
}

// New builds a Handler over api, logging requests with logger.
func New(api *boundary.API, logger zerolog.Logger) *Handler {
	return &Handler{api: api, logger: logger}
}

// RequestLogger is gin middleware logging one structured line per request,
// the way a zerolog-backed service logs HTTP access independent of any
// framework-specific logger plumbing.
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("dashboard request")
	}
}

// RegisterRoutes registers every dashboard route on router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/dashboard", h.handleOverview)
	router.GET("/dashboard/corpus/:corpusId", h.handleCorpusDetail)
	router.POST("/dashboard/corpus/:corpusId/select", h.handleSelect)
	router.POST("/dashboard/corpus/:corpusId/delete", h.handleDelete)
	router.GET("/dashboard/corpus/:corpusId/chart/:kind", h.handleChart)
	router.GET("/dashboard/schema", h.handleSchema)
	router.GET("/dashboard/query", h.handleQueryForm)
	router.POST("/dashboard/query", h.handleQueryRun)
	router.GET("/dashboard/import", h.handleImportForm)
	router.POST("/dashboard/import", h.handleImportStart)
	router.GET("/dashboard/import/:jobId", h.handleImportStatusPage)
	router.GET("/dashboard/import/:jobId/events", h.handleImportEvents)
}

func (h *Handler) serveHTML(c *gin.Context, html string, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}

func (h *Handler) handleOverview(c *gin.Context) {
	html, err := pages.RenderOverview(c.Request.Context(), h.api)
	h.serveHTML(c, html, err)
}

func timeFilterFromQuery(c *gin.Context) analytics.TimeFilter {
	start, end := pages.ParseTimeFilter(c.Query("startTs"), c.Query("endTs"))
	return analytics.TimeFilter{StartTs: start, EndTs: end}
}

func (h *Handler) handleCorpusDetail(c *gin.Context) {
	html, err := pages.RenderCorpusDetail(c.Request.Context(), h.api, c.Param("corpusId"), timeFilterFromQuery(c))
	h.serveHTML(c, html, err)
}

func (h *Handler) handleSelect(c *gin.Context) {
	if err := h.api.SessionsSelect(c.Request.Context(), c.Param("corpusId")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) handleDelete(c *gin.Context) {
	if err := h.api.SessionsDelete(c.Request.Context(), c.Param("corpusId")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) handleChart(c *gin.Context) {
	html, err := pages.RenderChart(c.Request.Context(), h.api, c.Param("corpusId"), c.Param("kind"), timeFilterFromQuery(c))
	h.serveHTML(c, html, err)
}

func (h *Handler) handleSchema(c *gin.Context) {
	html, err := pages.RenderSchema(c.Request.Context(), h.api)
	h.serveHTML(c, html, err)
}

func (h *Handler) handleQueryForm(c *gin.Context) {
	html, err := pages.RenderQuery("", nil, nil)
	h.serveHTML(c, html, err)
}

func (h *Handler) handleQueryRun(c *gin.Context) {
	sql := c.PostForm("sql")
	result, runErr := h.api.QuerySQL(c.Request.Context(), sql)
	var resultPtr *boundary.QueryResult
	if runErr == nil {
		resultPtr = &result
	}
	html, err := pages.RenderQuery(sql, resultPtr, runErr)
	h.serveHTML(c, html, err)
}

func (h *Handler) handleImportForm(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, pages.RenderImportForm())
}

func (h *Handler) handleImportStart(c *gin.Context) {
	path := c.PostForm("path")
	corpusID := c.PostForm("corpusId")
	jobID, err := h.api.ImportStart(c.Request.Context(), path, boundary.ImportOptions{CorpusID: corpusID})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/import/"+jobID)
}

func (h *Handler) handleImportStatusPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, pages.RenderImportStatus(c.Param("jobId")))
}

// handleImportEvents streams an import job's progress/done/error events as
// Server-Sent Events, closing once the job finishes.
func (h *Handler) handleImportEvents(c *gin.Context) {
	events, ok := h.api.Events(c.Param("jobId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown or finished job"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, _ := c.Writer.(http.Flusher)
	w := bufio.NewWriter(c.Writer)

	for ev := range events {
		switch ev.Kind {
		case boundary.JobEventProgress:
			fmt.Fprintf(w, "data: %s\n\n", progressHTML(ev.Progress))
		case boundary.JobEventDone:
			fmt.Fprintf(w, "event: done\ndata: %s\n\n", doneHTML(ev.Result))
		case boundary.JobEventError:
			fmt.Fprintf(w, "event: error-event\ndata: %s\n\n", errorHTML(ev.Err))
		}
		w.Flush()
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func progressHTML(p *importer.Progress) string {
	if p == nil {
		return "in progress…"
	}
	return fmt.Sprintf("%s — %d messages, %d/%d bytes", template.HTMLEscapeString(p.Phase), p.MessagesProcessed, p.BytesProcessed, p.TotalBytes)
}

func doneHTML(r *importer.Result) string {
	if r == nil {
		return "done"
	}
	return fmt.Sprintf("imported %d messages, %d members (corpus %s)",
		r.MessageCount, r.MemberCount, template.HTMLEscapeString(r.CorpusID))
}

func errorHTML(err error) string {
	if err == nil {
		return "failed"
	}
	return "failed: " + template.HTMLEscapeString(err.Error())
}
