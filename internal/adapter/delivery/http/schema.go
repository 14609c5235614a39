package http

import (
	"time"

	"github.com/artemivanov/shortlink/internal/entity"
	"github.com/go-playground/validator/v10"
)

const statusError = "error"

// shortLinkRequest represents the structure for a request to shorten a URL or
// modify an existing short link.
type shortLinkRequest struct {
	OriginalURL string `json:"original_url" validate:"required,url"`
}

// shortLinkResponse represents the structure for a response containing short link information.
type shortLinkResponse struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// toShortLinkResponse converts an entity.ShortLink to a shortLinkResponse.
func toShortLinkResponse(link *entity.ShortLink) shortLinkResponse {
	return shortLinkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

// linkStatsResponse represents the structure for a response containing short link statistics.
type linkStatsResponse struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	Stats       linkStats `json:"stats"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// linkStats represents the statistics for a short link.
type linkStats struct {
	AccessCount int64 `json:"access_count"`
}

// toLinkStatsResponse converts an entity.ShortLink to a linkStatsResponse.
func toLinkStatsResponse(link *entity.ShortLink) linkStatsResponse {
	return linkStatsResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		Stats: linkStats{
			AccessCount: link.AccessCount,
		},
		CreatedAt: link.CreatedAt,
		UpdatedAt: link.UpdatedAt,
	}
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	linkNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "short link not found",
	}

	invalidOriginalURLResponse = errorResponse{
		Status:  statusError,
		Message: "invalid original url",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
