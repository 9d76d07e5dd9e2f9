package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/market"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// getProperties serves GET /properties?filters=OPEN,USER&user=<pk>&refresh=true.
func (s *Server) getProperties(c *fiber.Ctx) error {
	var names []string
	if raw := c.Query("filters"); raw != "" {
		names = strings.Split(raw, ",")
	}
	filters, err := domain.ParseFilters(names)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	properties, err := s.market.GetProperties(c.Context(), market.PropertiesQuery{
		Filters:      filters,
		User:         c.Query("user"),
		ForceRefresh: c.QueryBool("refresh"),
	})
	if err != nil {
		return s.fail(c, err)
	}
	return ok(c, properties)
}

// getProperty serves GET /properties/:pda.
func (s *Server) getProperty(c *fiber.Ctx) error {
	p, err := s.market.GetProperty(c.Context(), c.Params("pda"), c.QueryBool("refresh"))
	if err != nil {
		return s.fail(c, err)
	}
	return ok(c, p)
}

// getInvestments serves GET /investments/:investor. The property working
// set supplies the prices the aggregates are computed from.
func (s *Server) getInvestments(c *fiber.Ctx) error {
	refresh := c.QueryBool("refresh")

	properties, err := s.market.GetProperties(c.Context(), market.PropertiesQuery{
		ForceRefresh: refresh,
	})
	if err != nil {
		return s.fail(c, err)
	}

	summary, err := s.market.GetInvestments(c.Context(), c.Params("investor"), properties, refresh)
	if err != nil {
		return s.fail(c, err)
	}
	return ok(c, summary)
}

// getStats serves GET /stats.
func (s *Server) getStats(c *fiber.Ctx) error {
	stats, err := s.market.PlatformStats(c.Context())
	if err != nil {
		return s.fail(c, err)
	}
	return ok(c, stats)
}

// getStatsHistory serves GET /stats/history?start=<unix>&end=<unix>.
func (s *Server) getStatsHistory(c *fiber.Ctx) error {
	start, err := strconv.ParseInt(c.Query("start", "0"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid start",
		})
	}
	end, err := strconv.ParseInt(c.Query("end", strconv.FormatInt(time.Now().Unix(), 10)), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid end",
		})
	}

	snapshots, err := s.history.GetRange(c.Context(), start, end)
	if err != nil {
		return s.fail(c, err)
	}
	return ok(c, snapshots)
}

// createProperty serves POST /properties.
func (s *Server) createProperty(c *fiber.Ctx) error {
	var req market.CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "malformed request body",
		})
	}

	sig, err := s.writer.CreateProperty(c.Context(), req)
	if err != nil {
		return s.fail(c, err)
	}
	return ok(c, fiber.Map{"signature": sig})
}

// invest serves POST /investments.
func (s *Server) invest(c *fiber.Ctx) error {
	return s.investmentTx(c, s.writer.Invest)
}

// withdraw serves POST /investments/withdraw.
func (s *Server) withdraw(c *fiber.Ctx) error {
	return s.investmentTx(c, s.writer.Withdraw)
}

// claimDividends serves POST /investments/claim.
func (s *Server) claimDividends(c *fiber.Ctx) error {
	return s.investmentTx(c, s.writer.ClaimDividends)
}

func (s *Server) investmentTx(c *fiber.Ctx, submit func(ctx context.Context, req market.InvestmentRequest) (string, error)) error {
	var req market.InvestmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "malformed request body",
		})
	}

	sig, err := submit(c.Context(), req)
	if err != nil {
		return s.fail(c, err)
	}
	return ok(c, fiber.Map{"signature": sig})
}

// distributeDividends serves POST /properties/distribute.
func (s *Server) distributeDividends(c *fiber.Ctx) error {
	return s.propertyTx(c, s.writer.DistributeDividends)
}

// closeProperty serves POST /properties/close.
func (s *Server) closeProperty(c *fiber.Ctx) error {
	return s.propertyTx(c, s.writer.CloseProperty)
}

func (s *Server) propertyTx(c *fiber.Ctx, submit func(ctx context.Context, req market.PropertyTxRequest) (string, error)) error {
	var req market.PropertyTxRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "malformed request body",
		})
	}

	sig, err := submit(c.Context(), req)
	if err != nil {
		return s.fail(c, err)
	}
	return ok(c, fiber.Map{"signature": sig})
}
