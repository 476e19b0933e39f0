package serverutils

import "github.com/gofiber/fiber/v2"

// Error kinds returned to clients. Each terminal failure of the research
// pipeline maps to exactly one kind so callers can tell "bad input" from
// "nothing found" from "try again later".
const (
	KindValidation        = "validation_error"
	KindSearchUnavailable = "search_unavailable"
	KindNoSources         = "no_sources"
	KindInferenceFailed   = "inference_failed"
	KindNotFound          = "not_found"
	KindInternal          = "internal_error"
)

type ApiError struct {
	Status  int    `json:"-"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ApiError {
	return &ApiError{Status: fiber.StatusBadRequest, Kind: KindValidation, Message: message}
}

func NewSearchUnavailableError(detail string) *ApiError {
	return &ApiError{Status: fiber.StatusServiceUnavailable, Kind: KindSearchUnavailable, Message: "Search service unavailable: " + detail}
}

func NewNoSourcesError() *ApiError {
	return &ApiError{Status: fiber.StatusNotFound, Kind: KindNoSources, Message: "No usable sources found for this query"}
}

func NewInferenceFailedError(detail string) *ApiError {
	return &ApiError{Status: fiber.StatusBadGateway, Kind: KindInferenceFailed, Message: "AI research failed: " + detail}
}

func NewNotFoundError(message string) *ApiError {
	return &ApiError{Status: fiber.StatusNotFound, Kind: KindNotFound, Message: message}
}
