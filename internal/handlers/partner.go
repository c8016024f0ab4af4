package handlers

import (
	"context"
	"errors"

	"gotalk/server/internal/middleware"
	"gotalk/server/internal/partner"

	"github.com/gofiber/fiber/v2"
)

func targetProfileID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("profileId")
	if err != nil || id < 1 {
		return 0, errors.New("invalid profile ID")
	}
	return int64(id), nil
}

// RequestPartner sends (or refreshes) a follow request to a profile
func RequestPartner(c *fiber.Ctx) error {
	followedID, err := targetProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid profile ID",
		})
	}
	followerID := middleware.GetProfileID(c)

	created, err := partners.Request(context.Background(), followerID, followedID)
	if err == partner.ErrSelfRequest {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "You cannot send a request to yourself",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send request",
		})
	}

	message := "Request was sent. You will be able to chat after confirming the request"
	if !created {
		message = "You have already sent a request. Request was updated"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// AcceptPartner accepts a pending request from a profile. Acceptance is
// mutual: both directions are stamped where present.
func AcceptPartner(c *fiber.Ctx) error {
	requesterID, err := targetProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid profile ID",
		})
	}
	profileID := middleware.GetProfileID(c)

	if err := partners.Accept(context.Background(), profileID, requesterID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to accept request",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Request accepted",
	})
}

// RejectPartner removes the relationship with a profile in both
// directions, whatever its state
func RejectPartner(c *fiber.Ctx) error {
	otherID, err := targetProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid profile ID",
		})
	}
	profileID := middleware.GetProfileID(c)

	if err := partners.Reject(context.Background(), profileID, otherID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to reject request",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Request rejected",
	})
}

// CanChatPartner reports whether chat with a profile is unlocked, i.e.
// both directional records between the two profiles are accepted
func CanChatPartner(c *fiber.Ctx) error {
	otherID, err := targetProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid profile ID",
		})
	}
	profileID := middleware.GetProfileID(c)

	canChat, err := partners.CanChat(context.Background(), profileID, otherID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"canChat": canChat,
		},
	})
}

// GetPartners lists the caller's mutually accepted partners
func GetPartners(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)
	ctx := context.Background()

	ids, err := partners.Partners(ctx, profileID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	cards, err := profileCardsByIDs(ctx, ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cards,
	})
}

// GetPartnerRequests lists incoming requests awaiting the caller's response
func GetPartnerRequests(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)
	ctx := context.Background()

	pending, err := partners.PendingFor(ctx, profileID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	ids := make([]int64, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.FollowerID)
	}
	cards, err := profileCardsByIDs(ctx, ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"requests": pending,
			"profiles": cards,
		},
	})
}
