package handlers

import (
	"strconv"
	"time"
	"topup/internal/types"
	"topup/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const MSG_INVALID_BODY = "Invalid request body"

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return types.Validation(MSG_INVALID_BODY)
	}
	return nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, types.Validation("Invalid " + name)
	}
	return id, nil
}

func queryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, types.Validation("Invalid " + name)
	}
	return &id, nil
}

func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, types.Validation("Invalid " + name)
	}
	return &value, nil
}

// queryDate accepts any client date format, including a bare year-month.
// Zoneless forms are read in loc.
func queryDate(c *fiber.Ctx, name string, loc *time.Location) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := utils.ParseDate(raw, loc)
	if err != nil {
		return nil, types.Validation("Invalid " + name)
	}
	return &parsed, nil
}
