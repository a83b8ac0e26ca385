// Package ui exposes the analysis engine over HTTP: a JSON API server
// for recording readings and fetching analyses, and a read-only report
// application that renders a markdown summary.
package ui

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"viradsbench/app"
	"viradsbench/domain/analysis"
	"viradsbench/domain/core"
	"viradsbench/domain/study"
	"viradsbench/ports"
)

// Server is the JSON API for the reading study.
type Server struct {
	router  *gin.Engine
	service *app.AnalysisService
	readers ports.ReaderRepository
}

// NewServer creates the API server.
func NewServer(service *app.AnalysisService, readers ports.ReaderRepository) *Server {
	s := &Server{
		router:  gin.Default(),
		service: service,
		readers: readers,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/cases", s.handleListCases)
	api.GET("/readers", s.handleListReaders)
	api.POST("/readers", s.handleCreateReader)
	api.GET("/readers/:id", s.handleGetReader)
	api.GET("/readers/:id/evaluations", s.handleReaderEvaluations)
	api.POST("/evaluations", s.handleRecordEvaluation)
	api.GET("/analysis", s.handleAnalysis)
	api.GET("/timing", s.handleTiming)
}

// Start runs the server on the given address.
func (s *Server) Start(addr string) error {
	log.Printf("Starting analysis API on http://%s", addr)
	return s.router.Run(addr)
}

// Handler exposes the router for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cases": len(s.service.Cases())})
}

func (s *Server) handleListCases(c *gin.Context) {
	cases := s.service.Cases()
	c.JSON(http.StatusOK, gin.H{"cases": cases, "count": len(cases)})
}

func (s *Server) handleListReaders(c *gin.Context) {
	readers, err := s.readers.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"readers": readers, "count": len(readers)})
}

type createReaderRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" binding:"required"`
	Experience string `json:"experience" binding:"required"`
}

func (s *Server) handleCreateReader(c *gin.Context) {
	var req createReaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	experience, err := study.ParseExperienceLevel(req.Experience)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := core.ReaderID(req.ID)
	if id == "" {
		id = core.ReaderID(core.NewID())
	}
	reader := study.Reader{
		ID:         id,
		Name:       req.Name,
		Experience: experience,
		CreatedAt:  core.Now(),
	}
	if err := s.readers.Create(c.Request.Context(), &reader); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, reader)
}

func (s *Server) handleGetReader(c *gin.Context) {
	reader, err := s.readers.GetByID(c.Request.Context(), core.ReaderID(c.Param("id")))
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reader)
}

func (s *Server) handleReaderEvaluations(c *gin.Context) {
	id := core.ReaderID(c.Param("id"))
	if _, err := s.readers.GetByID(c.Request.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if core.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	evals, err := s.service.ReaderEvaluations(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reader_id": id, "evaluations": evals, "count": len(evals)})
}

type subScoreRequest struct {
	Score      int `json:"score"`
	Confidence int `json:"confidence"`
}

type recordEvaluationRequest struct {
	ReaderID       string          `json:"reader_id" binding:"required"`
	CaseNumber     int             `json:"case_number" binding:"required"`
	T2W            subScoreRequest `json:"t2w"`
	DWI            subScoreRequest `json:"dwi"`
	DCE            subScoreRequest `json:"dce"`
	VIRADS         subScoreRequest `json:"virads"`
	Quality        int             `json:"quality"`
	ReadingSeconds float64         `json:"reading_seconds"`
}

func (r subScoreRequest) toDomain() study.SubScore {
	return study.SubScore{
		Score:      study.Score(r.Score),
		Confidence: study.Confidence(r.Confidence),
	}
}

func (s *Server) handleRecordEvaluation(c *gin.Context) {
	var req recordEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev := study.Evaluation{
		ReaderID:    core.ReaderID(req.ReaderID),
		CaseNumber:  req.CaseNumber,
		T2W:         req.T2W.toDomain(),
		DWI:         req.DWI.toDomain(),
		DCE:         req.DCE.toDomain(),
		VIRADS:      req.VIRADS.toDomain(),
		Quality:     study.ImageQuality(req.Quality),
		ReadingTime: time.Duration(req.ReadingSeconds * float64(time.Second)),
	}
	if err := s.service.RecordEvaluation(c.Request.Context(), &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (s *Server) handleAnalysis(c *gin.Context) {
	params, err := paramsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := s.service.Recompute(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) handleTiming(c *gin.Context) {
	params, err := paramsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	timing, err := s.service.Timing(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, timing)
}

// paramsFromQuery reads cutoff, prevalence, and partial query parameters,
// falling back to the defaults for any that are absent.
func paramsFromQuery(c *gin.Context) (analysis.Params, error) {
	params := analysis.DefaultParams()
	if v := c.Query("cutoff"); v != "" {
		cutoff, err := strconv.Atoi(v)
		if err != nil {
			return params, err
		}
		params.Cutoff = cutoff
	}
	if v := c.Query("prevalence"); v != "" {
		prevalence, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, err
		}
		params.Prevalence = prevalence
	}
	if v := c.Query("partial"); v != "" {
		partial, err := strconv.Atoi(v)
		if err != nil {
			return params, err
		}
		params.PartialPercentage = partial
	}
	return params, params.Validate()
}
