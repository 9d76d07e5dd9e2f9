// Package api exposes the read and write paths over HTTP.
package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marcelofeitoza/crowd-estate/internal/market"
	"github.com/marcelofeitoza/crowd-estate/internal/observability"
	"github.com/marcelofeitoza/crowd-estate/internal/program"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

// Server wires the HTTP routes to the market service.
type Server struct {
	app     *fiber.App
	market  *market.Service
	writer  *market.Writer
	history storage.StatsHistoryStore
	log     *logrus.Entry
}

// NewServer creates the HTTP server. writer and history may be nil;
// their routes are registered only when configured.
func NewServer(svc *market.Service, writer *market.Writer, history storage.StatsHistoryStore, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "crowd-estate",
			DisableStartupMessage: true,
		}),
		market:  svc,
		writer:  writer,
		history: history,
		log:     log.WithField("component", "api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(cors.New())
	s.app.Use(requestID)
	s.app.Use(timeRequests)

	s.app.Get("/health", s.health)

	s.app.Get("/properties", s.getProperties)
	s.app.Get("/properties/:pda", s.getProperty)
	s.app.Get("/investments/:investor", s.getInvestments)
	s.app.Get("/stats", s.getStats)

	if s.history != nil {
		s.app.Get("/stats/history", s.getStatsHistory)
	}

	if s.writer != nil {
		s.app.Post("/properties", s.createProperty)
		s.app.Post("/properties/distribute", s.distributeDividends)
		s.app.Post("/properties/close", s.closeProperty)
		s.app.Post("/investments", s.invest)
		s.app.Post("/investments/withdraw", s.withdraw)
		s.app.Post("/investments/claim", s.claimDividends)
	}
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given address and blocks.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requestID tags every response with an X-Request-ID, preserving one
// supplied by the caller.
func requestID(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)
	c.Locals("request_id", id)
	return c.Next()
}

// timeRequests records request duration per route and status.
func timeRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	route := c.Route().Path
	status := strconv.Itoa(c.Response().StatusCode())
	observability.RecordHTTPRequest(route, status, time.Since(start).Seconds())
	return err
}

// fail maps a service error to its HTTP status.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, market.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, market.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, market.ErrUpstreamUnavailable):
		status = fiber.StatusBadGateway
	case errors.Is(err, program.ErrTransactionFailed):
		status = fiber.StatusUnprocessableEntity
	}

	if status == fiber.StatusInternalServerError {
		s.log.WithError(err).WithField("request_id", c.Locals("request_id")).Error("unhandled error")
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
