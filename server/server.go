// Package server is the HTTP surface: print routes, the legacy ?action=
// entry point, the cost breakdown export and record CRUD.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lvillar/proposalpdf"
	"github.com/lvillar/proposalpdf/logging"
	"github.com/lvillar/proposalpdf/printer"
	"github.com/lvillar/proposalpdf/schema"
	"github.com/lvillar/proposalpdf/store"
)

// Server routes requests to the store and the print service.
type Server struct {
	store      *store.Store
	printer    *printer.Service
	schemas    *schema.Provider
	logger     *slog.Logger
	uploadsDir string
	engine     *gin.Engine
}

// Option is a functional option for configuring a Server via New.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithUploadsDir sets where uploaded attachments are written.
func WithUploadsDir(dir string) Option {
	return func(s *Server) {
		s.uploadsDir = dir
	}
}

func New(st *store.Store, pr *printer.Service, schemas *schema.Provider, opts ...Option) *Server {
	s := &Server{store: st, printer: pr, schemas: schemas, uploadsDir: "uploads"}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Logger()
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLog())
	s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/print", s.printLegacy)

	p := r.Group("/proposals")
	{
		p.GET("", s.listProposals)
		p.POST("", s.createProposal)
		p.GET("/:id", s.getProposal)
		p.PUT("/:id", s.updateProposal)
		p.DELETE("/:id", s.deleteProposal)
		p.POST("/:id/archive", s.archiveProposal)
		p.POST("/:id/unarchive", s.unarchiveProposal)
		p.POST("/:id/clone", s.cloneProposal)
		p.GET("/:id/pdf", s.printProposal)
		p.GET("/:id/export.xlsx", s.exportProposal)
		p.GET("/:id/items", s.listItems)
		p.POST("/:id/items", s.addItem)
		p.PUT("/:id/items", s.replaceItems)
		p.POST("/:id/packages", s.addPackages)
		p.POST("/:id/extras", s.addExtras)
	}
	r.PATCH("/items/:id", s.updateItem)
	r.DELETE("/items/:id", s.deleteItem)

	b := r.Group("/brochures")
	{
		b.GET("", s.listBrochures)
		b.POST("", s.createBrochure)
		b.GET("/:id", s.getBrochure)
		b.PUT("/:id", s.updateBrochure)
		b.DELETE("/:id", s.deleteBrochure)
		b.PUT("/:id/items", s.setBrochureItems)
		b.GET("/:id/pdf", s.printBrochure)
	}

	pk := r.Group("/packages")
	{
		pk.GET("", s.listPackages)
		pk.POST("", s.createPackage)
		pk.GET("/:id", s.getPackage)
		pk.PUT("/:id", s.updatePackage)
		pk.DELETE("/:id", s.deletePackage)
		pk.POST("/:id/archive", s.archivePackage)
		pk.POST("/:id/unarchive", s.unarchivePackage)
		pk.POST("/:id/clone", s.clonePackage)
	}

	ex := r.Group("/extras")
	{
		ex.GET("", s.listExtras)
		ex.POST("", s.createExtra)
		ex.GET("/:id", s.getExtra)
		ex.PUT("/:id", s.updateExtra)
		ex.DELETE("/:id", s.deleteExtra)
	}

	sn := r.Group("/snippets")
	{
		sn.GET("", s.listSnippets)
		sn.POST("", s.createSnippet)
		sn.GET("/:id", s.getSnippet)
		sn.PUT("/:id", s.updateSnippet)
		sn.DELETE("/:id", s.deleteSnippet)
	}

	a := r.Group("/assets")
	{
		a.GET("", s.listAssets)
		a.POST("", s.createAsset)
		a.GET("/:id", s.getAsset)
		a.PUT("/:id", s.updateAsset)
		a.DELETE("/:id", s.deleteAsset)
	}
	r.POST("/attachments", s.uploadAttachment)

	r.GET("/schemas", s.listSchemas)
	r.GET("/schemas/:kind", s.getSchema)
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// paramID reads a positive integer path parameter, writing 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + "."})
		return 0, false
	}
	return id, true
}

// fail writes err with the status its kind maps to. notFound is the message
// shown when the record is missing.
func (s *Server) fail(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, proposalpdf.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, proposalpdf.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, proposalpdf.ErrRender):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating PDF."})
	default:
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error."})
	}
}
