package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/extract"
	"github.com/proposal-analyzer/backend/pkg/logger"
)

// QuestionsHandler manages the default question list, one question per line
// in a plain text file. Uploading a questions document overrides it per run.
type QuestionsHandler struct {
	questionsFile string
}

func NewQuestionsHandler(questionsFile string) *QuestionsHandler {
	return &QuestionsHandler{questionsFile: questionsFile}
}

// Save accepts either a JSON body {"questions": [...]} or raw text with one
// question per line and writes it as the new default list.
func (h *QuestionsHandler) Save(c *fiber.Ctx) error {
	var content string

	contentType := c.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var req struct {
			Questions []string `json:"questions"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		content = strings.Join(req.Questions, "\n")
	} else {
		content = string(c.Body())
	}

	questions := extract.ParseQuestions(content)
	if len(questions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No questions provided",
		})
	}

	if err := os.MkdirAll(filepath.Dir(h.questionsFile), 0o755); err != nil {
		logger.Error("Failed to create questions directory", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save questions",
		})
	}

	if err := os.WriteFile(h.questionsFile, []byte(strings.Join(questions, "\n")+"\n"), 0o644); err != nil {
		logger.Error("Failed to write questions file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save questions",
		})
	}

	logger.Info("Question list saved",
		zap.String("path", h.questionsFile),
		zap.Int("count", len(questions)),
	)

	return c.JSON(fiber.Map{
		"path":  h.questionsFile,
		"count": len(questions),
	})
}

// Get returns the current default question list. A missing file is an empty
// list, not an error.
func (h *QuestionsHandler) Get(c *fiber.Ctx) error {
	questions, err := h.Load()
	if err != nil {
		logger.Error("Failed to read questions file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read questions",
		})
	}
	if questions == nil {
		questions = []string{}
	}

	return c.JSON(fiber.Map{
		"questions": questions,
		"count":     len(questions),
	})
}

// Load reads the default question list from disk.
func (h *QuestionsHandler) Load() ([]string, error) {
	data, err := os.ReadFile(h.questionsFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return extract.ParseQuestions(string(data)), nil
}
