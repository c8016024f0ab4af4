package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gotalk/server/internal/database"
	"gotalk/server/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	MaxAvatarSize    = 2 * 1024 * 1024 // 2MB
	UploadDir        = "./uploads"
	AllowedImageExts = ".jpg,.jpeg,.png,.gif,.webp"
)

// UploadAvatar stores a new avatar image and attaches it to the
// caller's profile
func UploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No avatar uploaded",
		})
	}

	if file.Size > MaxAvatarSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Avatar size exceeds limit of 2MB",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" || !strings.Contains(AllowedImageExts, ext) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid image format. Allowed: jpg, jpeg, png, gif, webp",
		})
	}

	uploadPath := filepath.Join(UploadDir, "avatars")
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create upload directory",
		})
	}

	filename := fmt.Sprintf("%s-%d%s", uuid.New().String(), time.Now().Unix(), ext)
	fullPath := filepath.Join(uploadPath, filename)

	if err := c.SaveFile(file, fullPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save avatar",
		})
	}

	avatarURL := "/uploads/avatars/" + filename
	profileID := middleware.GetProfileID(c)
	_, err = database.Pool.Exec(context.Background(),
		"UPDATE profiles SET avatar = $1, updated_at = $2 WHERE id = $3",
		avatarURL, time.Now(), profileID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update profile",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"url": avatarURL,
		},
	})
}

// GetAvatar serves stored avatar images
func GetAvatar(c *fiber.Ctx) error {
	filename := c.Params("filename")

	// Prevent path traversal
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid filename",
		})
	}

	fullPath := filepath.Join(UploadDir, "avatars", filename)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Avatar not found",
		})
	}

	return c.SendFile(fullPath)
}
