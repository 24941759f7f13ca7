package web

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jobpilot/jobpilot/internal/inbox"
	"github.com/jobpilot/jobpilot/internal/orchestrator"
	"github.com/jobpilot/jobpilot/internal/scoring"
	"github.com/jobpilot/jobpilot/internal/stats"
	"github.com/jobpilot/jobpilot/internal/tailoring"

	"go.uber.org/zap"
)

// Server exposes the pipeline over HTTP: batch runs, scoring, inbox scans,
// stats, and the tailored resume lifecycle.
type Server struct {
	app    *fiber.App
	logger *zap.Logger

	runner   *orchestrator.Runner
	scorer   *scoring.Engine
	scanner  *inbox.ScanService
	creds    inbox.Credentials
	stats    *stats.Service
	tailored *tailoring.Store
}

// Config wires the server dependencies. Any nil service disables its routes
// with a 503 instead of a panic.
type Config struct {
	Runner      *orchestrator.Runner
	Scorer      *scoring.Engine
	Scanner     *inbox.ScanService
	Credentials inbox.Credentials
	Stats       *stats.Service
	Tailored    *tailoring.Store
}

// New builds the fiber application and registers the API routes.
func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:   logger,
		runner:   cfg.Runner,
		scorer:   cfg.Scorer,
		scanner:  cfg.Scanner,
		creds:    cfg.Credentials,
		stats:    cfg.Stats,
		tailored: cfg.Tailored,
	}

	app := fiber.New(fiber.Config{
		AppName:               "jobpilot API",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/batch", s.runBatch)
	api.Post("/score", s.score)
	api.Post("/scan", s.scan)
	api.Get("/stats", s.applicationStats)
	api.Get("/tailored", s.listTailored)
	api.Post("/tailored/:id/confirm", s.confirmTailored)
	api.Post("/tailored/:id/discard", s.discardTailored)

	s.app = app
	return s
}

// Listen blocks serving HTTP on the address.
func (s *Server) Listen(addr string) error {
	s.logger.Info("api server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

type batchRequest struct {
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

func (s *Server) runBatch(c *fiber.Ctx) error {
	if s.runner == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "batch runner not configured")
	}

	req := batchRequest{Platform: "linkedin", Count: 5}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid batch request: "+err.Error())
		}
	}

	result, err := s.runner.RunBatch(c.Context(), req.Platform, req.Count)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

type scoreRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

func (s *Server) score(c *fiber.Ctx) error {
	if s.scorer == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "scoring engine not configured")
	}

	var req scoreRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid score request: "+err.Error())
	}
	if req.JobDescription == "" {
		return fiber.NewError(fiber.StatusBadRequest, "job_description is required")
	}

	return c.JSON(s.scorer.Score(c.Context(), req.ResumeText, req.JobDescription))
}

type scanRequest struct {
	LookbackHours int `json:"lookback_hours"`
}

func (s *Server) scan(c *fiber.Ctx) error {
	if s.scanner == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "inbox scanner not configured")
	}

	var req scanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid scan request: "+err.Error())
		}
	}

	summary, err := s.scanner.Run(c.Context(), s.creds, req.LookbackHours)
	if err != nil {
		if errors.Is(err, inbox.ErrMissingCredentials) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{
		"summary": summary,
		"updates": summary.Updates,
	})
}

func (s *Server) applicationStats(c *fiber.Ctx) error {
	if s.stats == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "stats service not configured")
	}

	summary, err := s.stats.Collect()
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (s *Server) listTailored(c *fiber.Ctx) error {
	if s.tailored == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "tailored resume store not configured")
	}

	records, err := s.tailored.List()
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (s *Server) confirmTailored(c *fiber.Ctx) error {
	return s.transitionTailored(c, func(id string) (*tailoring.TailoredResume, error) {
		return s.tailored.Confirm(id)
	})
}

func (s *Server) discardTailored(c *fiber.Ctx) error {
	return s.transitionTailored(c, func(id string) (*tailoring.TailoredResume, error) {
		return s.tailored.Discard(id)
	})
}

func (s *Server) transitionTailored(c *fiber.Ctx, transition func(string) (*tailoring.TailoredResume, error)) error {
	if s.tailored == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "tailored resume store not configured")
	}

	record, err := transition(c.Params("id"))
	if err != nil {
		if errors.Is(err, tailoring.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(record)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	s.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
