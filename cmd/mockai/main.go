package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"resume-render/internal/logger"
)

// Development stand-in for the ai-service chat endpoint. It answers summary
// prompts with a canned summary for the job title found in the prompt.

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

func jobTitle(input string) string {
	for _, line := range strings.Split(input, "\n") {
		if v, ok := strings.CutPrefix(line, "Job Title:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.Input == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	title := jobTitle(req.Input)
	if title == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	summary, _ := json.Marshal(map[string]string{
		"summary": fmt.Sprintf("Results-driven %s with a record of shipping reliable work on schedule. "+
			"Brings hands-on experience across the full delivery cycle and a habit of measurable improvement.", title),
	})
	// prose around the object, like a chatty model
	return c.JSON(fiber.Map{"agent": "mock", "output": "Here is your summary:\n" + string(summary)})
}

func main() {
	log := logger.New(0)

	app := fiber.New()
	app.Post("/v1/chat", chat)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("mock ai server failed", "error", err)
	}
}
