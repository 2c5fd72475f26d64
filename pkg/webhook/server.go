package webhook

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Trigger interface {
	Trigger(ref, commit string) bool
}

type pushEvent struct {
	Ref   string `json:"ref"`
	After string `json:"after"`
}

// NewServer returns the deploy hook app. Only signed push events for ref
// start a deploy.
func NewServer(secret []byte, ref string, deploys Trigger, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Post("/webhook", func(c *fiber.Ctx) error {
		body := c.Body()
		if !Verify(secret, body, c.Get("X-Hub-Signature-256")) {
			log.Warn("deploy webhook rejected", zap.String("ip", c.IP()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
		}

		event := c.Get("X-GitHub-Event")
		if event == "ping" {
			return c.JSON(fiber.Map{"message": "pong"})
		}
		if event != "push" {
			return c.JSON(fiber.Map{"message": "ignored event " + event})
		}

		var push pushEvent
		if err := json.Unmarshal(body, &push); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}
		if push.Ref != ref {
			return c.JSON(fiber.Map{"message": "ignored ref " + push.Ref})
		}

		if !deploys.Trigger(push.Ref, push.After) {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "deploy already running"})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "deploy started"})
	})

	return app
}
