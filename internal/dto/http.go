package dto

import "net/http"

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func NewBadRequestResponse(message string) *BaseResponse {
	return NewBaseResponse(http.StatusBadRequest, message, nil)
}

func NewSuccessResponse(message string, data interface{}) *BaseResponse {
	return NewBaseResponse(http.StatusOK, message, data)
}

// AnalyzeRequest carries one analysis job. The data fields hold raw text
// blobs, the engine parses whatever structure it can find in them.
type AnalyzeRequest struct {
	Ticker           string `json:"ticker" validate:"required"`
	CompanyName      string `json:"company_name"`
	PriceData        string `json:"price_data"`
	FundamentalsData string `json:"fundamentals_data"`
	NewsData         string `json:"news_data"`
	MarketData       string `json:"market_data"`
}

type BatchAnalyzeRequest struct {
	Requests []AnalyzeRequest `json:"requests" validate:"required,min=1,dive"`
}
