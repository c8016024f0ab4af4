package middleware

import (
	"gotalk/server/internal/presence"

	"github.com/gofiber/fiber/v2"
)

const onlineNowKey = "onlineNowIDs"

// OnlineNow refreshes the caller's presence on every request and attaches
// the computed online id list to the request context. Must run after
// OptionalAuth so the caller's identity is available. The tracker absorbs
// cache failures, so this middleware never fails a request.
func OnlineNow(tracker *presence.Tracker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids := tracker.Refresh(c.UserContext(), GetUserID(c))
		c.Locals(onlineNowKey, ids)
		return c.Next()
	}
}

// OnlineNowIDs returns the online id list computed for this request.
func OnlineNowIDs(c *fiber.Ctx) []int64 {
	ids, ok := c.Locals(onlineNowKey).([]int64)
	if !ok {
		return nil
	}
	return ids
}
