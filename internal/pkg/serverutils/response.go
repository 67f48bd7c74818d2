package serverutils

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform JSON body every endpoint returns.
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(code int, message string, data interface{}) Envelope {
	return Envelope{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Envelope {
	return Envelope{
		Code:    code,
		Message: message,
	}
}

// ErrorHandlerMiddleware converts unhandled errors and panics into the
// standard envelope so clients never see a bare stack trace.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %v", r)
				_ = ctx.Status(fiber.StatusInternalServerError).
					JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
			}
		}()

		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
