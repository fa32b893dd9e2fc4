package validation

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/pkg/config"
)

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

const (
	comparisonsPath = "/api/v1/comparisons"
	snapshotsPath   = "/api/v1/snapshots"
)

type Config struct {
	MaxSnapshotRows     int
	MaxNameLength       int
	MaxHistoryLimit     int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxSnapshotRows == 0 {
		cfg.MaxSnapshotRows = 500000
	}
	if cfg.MaxNameLength == 0 {
		cfg.MaxNameLength = 200
	}
	if cfg.MaxHistoryLimit == 0 {
		cfg.MaxHistoryLimit = 1000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get(fiber.HeaderContentType)
			if contentType != "" && !allowedContentType(contentType, cfg.AllowedContentTypes) {
				return badRequest(c, fiber.StatusUnsupportedMediaType, "Unsupported content type")
			}
		}

		path := c.Path()

		if c.Method() == fiber.MethodGet {
			if limit := c.Query("limit"); limit != "" {
				n, err := strconv.Atoi(limit)
				if err != nil || n <= 0 || n > cfg.MaxHistoryLimit {
					return badRequest(c, fiber.StatusBadRequest, "limit must be a positive integer up to "+strconv.Itoa(cfg.MaxHistoryLimit))
				}
			}
			return c.Next()
		}

		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		switch {
		case strings.HasPrefix(path, comparisonsPath):
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, fiber.StatusBadRequest, "Invalid JSON format")
			}
			if msg := validateComparison(req); msg != "" {
				cfg.Logger.Debug("Rejected comparison parameters",
					zap.String("ip", c.IP()),
					zap.String("path", path),
					zap.String("reason", msg),
				)
				return badRequest(c, fiber.StatusBadRequest, msg)
			}

		case path == snapshotsPath:
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, fiber.StatusBadRequest, "Invalid JSON format")
			}

			propertyURL, ok := req["propertyUrl"].(string)
			if !ok || propertyURL == "" {
				return badRequest(c, fiber.StatusBadRequest, "propertyUrl is required and must be a string")
			}
			if !isValidProperty(propertyURL) {
				return badRequest(c, fiber.StatusBadRequest, "Invalid propertyUrl format")
			}

			if name, ok := req["name"].(string); ok {
				if len(name) > cfg.MaxNameLength {
					return badRequest(c, fiber.StatusBadRequest, "name exceeds maximum length")
				}
				if containsXSS(name) {
					cfg.Logger.Warn("Potential XSS attempt",
						zap.String("ip", c.IP()),
						zap.String("name", name),
					)
					return badRequest(c, fiber.StatusBadRequest, "Invalid name content")
				}
			}

			rows, ok := req["rows"].([]interface{})
			if !ok {
				return badRequest(c, fiber.StatusBadRequest, "rows is required and must be an array")
			}
			if len(rows) > cfg.MaxSnapshotRows {
				return badRequest(c, fiber.StatusRequestEntityTooLarge, "Snapshot exceeds maximum row count")
			}
		}

		return c.Next()
	}
}

// validateComparison returns a client-facing message for the first invalid field,
// or "" when the request is acceptable. Omitted parameters fall back to defaults.
func validateComparison(req map[string]interface{}) string {
	for _, field := range []string{"snapshotA", "snapshotB"} {
		id, ok := req[field].(string)
		if !ok || strings.TrimSpace(id) == "" {
			return field + " is required and must be a string"
		}
	}

	if raw, present := req["directoryDepth"]; present {
		depth, ok := wholeNumber(raw)
		if !ok {
			return "directoryDepth must be an integer"
		}
		if err := config.ValidateDepth(depth); err != nil {
			return err.Error()
		}
	}

	if raw, present := req["minSimilarity"]; present {
		threshold, ok := raw.(float64)
		if !ok {
			return "minSimilarity must be a number"
		}
		if err := config.ValidateMinSimilarity(threshold); err != nil {
			return err.Error()
		}
	}

	if raw, present := req["topKeywordsCount"]; present {
		n, ok := wholeNumber(raw)
		if !ok {
			return "topKeywordsCount must be an integer"
		}
		if err := config.ValidateTopKeywordsCount(n); err != nil {
			return err.Error()
		}
	}

	if raw, present := req["sortBy"]; present {
		s, ok := raw.(string)
		if !ok {
			return "sortBy must be a string"
		}
		if _, err := compare.ParseSortBy(s); err != nil {
			return err.Error()
		}
	}

	if raw, present := req["statusFilter"]; present {
		s, ok := raw.(string)
		if !ok {
			return "statusFilter must be a string"
		}
		if _, err := compare.ParseStatusFilter(s); err != nil {
			return err.Error()
		}
	}

	return ""
}

func wholeNumber(raw interface{}) (int, bool) {
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func allowedContentType(contentType string, allowed []string) bool {
	for _, allowedType := range allowed {
		if strings.Contains(contentType, allowedType) {
			return true
		}
	}
	return false
}

func badRequest(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func containsXSS(input string) bool {
	return xssPattern.MatchString(input)
}

// isValidProperty accepts URL-prefix properties and sc-domain: properties.
func isValidProperty(property string) bool {
	if domain, ok := strings.CutPrefix(property, "sc-domain:"); ok {
		return domain != "" && !strings.ContainsAny(domain, "/ ")
	}

	u, err := url.Parse(property)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}
