package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"nexusretail/config"
	"nexusretail/database"
	"nexusretail/models"
	"nexusretail/utils"
)

// Chat intents recognised by keyword matching.
const (
	intentNavigatePOS       = "navigate_pos"
	intentNavigateDashboard = "navigate_dashboard"
	intentInventoryStats    = "inventory_stats"
	intentUnknown           = "unknown"
)

var intentKeywords = map[string][]string{
	intentNavigatePOS:       {"sell", "pos", "checkout", "register", "point of sale"},
	intentNavigateDashboard: {"home", "dashboard", "menu", "main", "start"},
	intentInventoryStats:    {"stock", "how many", "count", "inventory"},
}

// intentOrder fixes the matching precedence: navigation wins over data
// queries so "sell stock" opens the POS.
var intentOrder = []string{intentNavigatePOS, intentNavigateDashboard, intentInventoryStats}

// classifyChatIntent matches the user's text against the keyword table.
func classifyChatIntent(text string) string {
	lowered := strings.ToLower(text)
	for _, intent := range intentOrder {
		for _, keyword := range intentKeywords[intent] {
			if strings.Contains(lowered, keyword) {
				return intent
			}
		}
	}
	return intentUnknown
}

// HandleChat answers assistant queries: navigation commands and inventory
// questions are resolved locally; anything else falls back to Gemini when
// an API key is configured, or to the default greeting.
func HandleChat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}

	switch classifyChatIntent(req.Text) {
	case intentNavigatePOS:
		action := "NAVIGATE_POS"
		return c.JSON(models.ChatResponse{
			Text:   "Opening the Point of Sale module for you now.",
			Action: &action,
		})

	case intentNavigateDashboard:
		action := "NAVIGATE_DASHBOARD"
		return c.JSON(models.ChatResponse{
			Text:   "Returning to the Main Dashboard.",
			Action: &action,
		})

	case intentInventoryStats:
		text, err := inventoryStatsReply()
		if err != nil {
			log.Printf("Error building inventory stats reply: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to query inventory"})
		}
		return c.JSON(models.ChatResponse{Text: text})
	}

	if config.AppConfig.GeminiAPIKey != "" {
		text, err := generateChatReply(req.Text)
		if err == nil {
			return c.JSON(models.ChatResponse{Text: text})
		}
		log.Printf("Gemini fallback failed, using default reply: %v", err)
	}

	return c.JSON(models.ChatResponse{
		Text: "I am Nexus, your Operations Assistant. " +
			"I can help you check stock levels, navigate to the POS, or analyze sales trends. " +
			"How may I assist you?",
	})
}

// inventoryStatsReply summarises the catalog: product count and the total
// cost value of stock on hand.
func inventoryStatsReply() (string, error) {
	db := database.GetDB()
	ctx := context.Background()

	var count int
	var totalValue float64
	query := `SELECT COUNT(*), COALESCE(SUM(cost_price * stock_quantity), 0) FROM products`
	if err := db.QueryRow(ctx, query).Scan(&count, &totalValue); err != nil {
		return "", fmt.Errorf("failed to query inventory stats: %w", err)
	}

	return fmt.Sprintf(
		"You currently have %d unique products registered in the database. The total cost value of your inventory is %s.",
		count, utils.FormatMoney(totalValue),
	), nil
}

// generateChatReply asks Gemini for a short answer to an unmatched prompt.
func generateChatReply(prompt string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create AI client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-1.5-pro")
	assistantPrompt := fmt.Sprintf(
		`You are Nexus, a concise operations assistant for a retail point-of-sale system. Answer the user's question in at most three sentences. The user asked: "%s"`,
		prompt,
	)

	resp, err := model.GenerateContent(ctx, genai.Text(assistantPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return strings.TrimSpace(fmt.Sprint(resp.Candidates[0].Content.Parts[0])), nil
}
