package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/validator"
)

// paramID разбирает числовой path-параметр
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{name: "must be an integer"})
	}
	return id, nil
}

func paramIndex(c *fiber.Ctx, name string) (int, error) {
	index, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, errors.ErrInvalidVertexIndex.WithDetails(map[string]interface{}{name: "must be an integer"})
	}
	return index, nil
}

// parseBody разбирает и валидирует тело запроса
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"body": err.Error()})
	}
	if err := validator.Validate(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(validator.FieldErrors(err))
	}
	return nil
}

func validationFailed(fieldErrors map[string]string) error {
	details := make(map[string]interface{}, len(fieldErrors))
	for field, msg := range fieldErrors {
		details[field] = msg
	}
	return errors.ErrValidationFailed.WithDetails(details)
}
