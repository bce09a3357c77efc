package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, max int) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Post("/login", EmailRateLimit(cache, "login", max, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, cleanup
}

func postLogin(t *testing.T, app *fiber.App, email string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestEmailRateLimitBlocksAfterMax(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 3)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if status := postLogin(t, app, "alice@example.com"); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}

	if status := postLogin(t, app, "alice@example.com"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", status)
	}
}

func TestEmailRateLimitIsPerEmail(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 1)
	defer cleanup()

	if status := postLogin(t, app, "alice@example.com"); status != fiber.StatusOK {
		t.Fatalf("alice first attempt: expected 200, got %d", status)
	}
	if status := postLogin(t, app, "alice@example.com"); status != fiber.StatusTooManyRequests {
		t.Fatalf("alice second attempt: expected 429, got %d", status)
	}
	if status := postLogin(t, app, "bob@example.com"); status != fiber.StatusOK {
		t.Fatalf("bob must not share alice's allowance, got %d", status)
	}
}

func TestEmailRateLimitFailsOpenWithoutCache(t *testing.T) {
	app := fiber.New()
	app.Post("/login", EmailRateLimit(nil, "login", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		if status := postLogin(t, app, "alice@example.com"); status != fiber.StatusOK {
			t.Fatalf("attempt %d without cache: expected 200, got %d", i+1, status)
		}
	}
}
