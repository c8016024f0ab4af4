package handlers

import (
	"context"

	"gotalk/server/internal/database"
	"gotalk/server/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// CountryRequest represents create/update country request body
type CountryRequest struct {
	Abbreviation string `json:"abbreviation" validate:"required,len=2,uppercase"`
	Name         string `json:"name" validate:"required,max=50"`
}

// ListCountries returns all countries
func ListCountries(c *fiber.Ctx) error {
	rows, err := database.Pool.Query(context.Background(), `
		SELECT id, abbreviation, name FROM countries ORDER BY name
	`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	countries := []models.Country{}
	for rows.Next() {
		var country models.Country
		if err := rows.Scan(&country.ID, &country.Abbreviation, &country.Name); err != nil {
			continue
		}
		countries = append(countries, country)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    countries,
	})
}

// GetCountry returns one country by ID
func GetCountry(c *fiber.Ctx) error {
	countryID, err := c.ParamsInt("countryId")
	if err != nil || countryID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid country ID",
		})
	}

	var country models.Country
	err = database.Pool.QueryRow(context.Background(), `
		SELECT id, abbreviation, name FROM countries WHERE id = $1
	`, countryID).Scan(&country.ID, &country.Abbreviation, &country.Name)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Country not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    country,
	})
}

// CreateCountry adds a country to the lookup table
func CreateCountry(c *fiber.Ctx) error {
	var req CountryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	var country models.Country
	err := database.Pool.QueryRow(context.Background(), `
		INSERT INTO countries (abbreviation, name)
		VALUES ($1, $2)
		RETURNING id, abbreviation, name
	`, req.Abbreviation, req.Name).Scan(&country.ID, &country.Abbreviation, &country.Name)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create country",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    country,
	})
}

// UpdateCountry updates a country in the lookup table
func UpdateCountry(c *fiber.Ctx) error {
	countryID, err := c.ParamsInt("countryId")
	if err != nil || countryID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid country ID",
		})
	}

	var req CountryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	var country models.Country
	err = database.Pool.QueryRow(context.Background(), `
		UPDATE countries SET abbreviation = $1, name = $2
		WHERE id = $3
		RETURNING id, abbreviation, name
	`, req.Abbreviation, req.Name, countryID).Scan(&country.ID, &country.Abbreviation, &country.Name)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Country not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update country",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    country,
	})
}

// DeleteCountry removes a country from the lookup table
func DeleteCountry(c *fiber.Ctx) error {
	countryID, err := c.ParamsInt("countryId")
	if err != nil || countryID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid country ID",
		})
	}

	tag, err := database.Pool.Exec(context.Background(), "DELETE FROM countries WHERE id = $1", countryID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to delete country",
		})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Country not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Country deleted",
	})
}
