package handlers

import (
	"context"

	"gotalk/server/internal/database"
	"gotalk/server/internal/middleware"
	"gotalk/server/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetOnlineUsers resolves the online id list computed for this request
// into user records. The ids come from the presence middleware; this is
// the explicit accessor counterpart to the request-scoped list.
func GetOnlineUsers(c *fiber.Ctx) error {
	ids := middleware.OnlineNowIDs(c)

	users, err := usersByIDs(context.Background(), ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"ids":   ids,
			"users": users,
			"count": len(ids),
		},
	})
}

// usersByIDs resolves user ids to responses, preserving the order of
// ids (most recently active last).
func usersByIDs(ctx context.Context, ids []int64) ([]models.UserResponse, error) {
	users := []models.UserResponse{}
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := database.Pool.Query(ctx, `
		SELECT id, email, first_name, last_name, last_login, created_at
		FROM users WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int64]models.UserResponse{}
	for rows.Next() {
		var u models.UserResponse
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.LastLogin, &u.CreatedAt); err != nil {
			continue
		}
		byID[u.ID] = u
	}

	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}
