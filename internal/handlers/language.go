package handlers

import (
	"context"

	"gotalk/server/internal/database"
	"gotalk/server/internal/middleware"
	"gotalk/server/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LanguageLevelRequest represents the study-level update request body
type LanguageLevelRequest struct {
	Level string `json:"level" validate:"required"`
}

// ListLanguages returns all languages
func ListLanguages(c *fiber.Ctx) error {
	rows, err := database.Pool.Query(context.Background(), `
		SELECT id, name FROM languages ORDER BY name
	`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	languages := []models.Language{}
	for rows.Next() {
		var language models.Language
		if err := rows.Scan(&language.ID, &language.Name); err != nil {
			continue
		}
		languages = append(languages, language)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    languages,
	})
}

// ListTags returns all tags with their areas
func ListTags(c *fiber.Ctx) error {
	rows, err := database.Pool.Query(context.Background(), `
		SELECT t.id, t.tag, t.tag_area_id, a.area
		FROM tags t
		JOIN tag_areas a ON a.id = t.tag_area_id
		ORDER BY a.area, t.tag
	`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	type tagWithArea struct {
		models.Tag
		Area string `json:"area"`
	}

	tags := []tagWithArea{}
	for rows.Next() {
		var t tagWithArea
		if err := rows.Scan(&t.ID, &t.Tag.Tag, &t.TagAreaID, &t.Area); err != nil {
			continue
		}
		tags = append(tags, t)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    tags,
	})
}

// SetLanguageLevel sets or updates the caller's study level for a language
func SetLanguageLevel(c *fiber.Ctx) error {
	languageID, err := c.ParamsInt("languageId")
	if err != nil || languageID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid language ID",
		})
	}

	var req LanguageLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if !models.ValidLevel(req.Level) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown proficiency level",
		})
	}

	profileID := middleware.GetProfileID(c)
	_, err = database.Pool.Exec(context.Background(), `
		INSERT INTO profile_languages (profile_id, language_id, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, language_id)
		DO UPDATE SET level = EXCLUDED.level
	`, profileID, languageID, req.Level)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to set language level",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": models.LanguageLevel{
			ProfileID:  profileID,
			LanguageID: int64(languageID),
			Level:      req.Level,
		},
	})
}

// RemoveLanguageLevel removes a studied language from the caller's profile
func RemoveLanguageLevel(c *fiber.Ctx) error {
	languageID, err := c.ParamsInt("languageId")
	if err != nil || languageID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid language ID",
		})
	}

	profileID := middleware.GetProfileID(c)
	_, err = database.Pool.Exec(context.Background(),
		"DELETE FROM profile_languages WHERE profile_id = $1 AND language_id = $2",
		profileID, languageID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to remove language",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Language removed",
	})
}
