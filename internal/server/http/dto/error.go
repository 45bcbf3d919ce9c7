package dto

// ErrorResponse carries the reason of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}
