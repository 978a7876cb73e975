package handler

// ErrorResponse is the JSON body for every rejected request. The optional
// fields let a client retry with a corrected amount.
type ErrorResponse struct {
	Error        string `json:"error"`
	MinimumBid   *int64 `json:"minimumBid,omitempty"`
	CurrentBid   *int64 `json:"currentBid,omitempty"`
	IsReserveMet *bool  `json:"isReserveMet,omitempty"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}
