package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/gradeflow/assess-api/internal/utils"
)

func limitedApp(max int) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user := c.Get("X-Test-User"); user != "" {
			c.Locals("user_id", user)
		}
		return c.Next()
	})
	app.Get("/locks", RateLimit("locks", max, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRateLimitReturnsErrorEnvelopeWhenExceeded(t *testing.T) {
	app := limitedApp(2)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/locks", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/locks", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Success)
	require.Contains(t, body.Message, "too many requests")
}

func TestRateLimitCountsEachUserSeparately(t *testing.T) {
	app := limitedApp(1)

	asUser := func(user string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/locks", nil)
		req.Header.Set("X-Test-User", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	require.Equal(t, fiber.StatusOK, asUser("tutor1").StatusCode)
	require.Equal(t, fiber.StatusTooManyRequests, asUser("tutor1").StatusCode)
	// A different grader still has their own budget.
	require.Equal(t, fiber.StatusOK, asUser("tutor2").StatusCode)
}
