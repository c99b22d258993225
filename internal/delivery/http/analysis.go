package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"golang-stock-analysis/internal/dto"
)

func (h *HttpAPIHandler) SetupAnalysis(base *echo.Group) {
	v1 := base.Group("/v1/analysis")
	v1.POST("", h.analyze)
	v1.POST("/report", h.analyzeReport)
	v1.POST("/batch", h.analyzeBatch)
}

func (h *HttpAPIHandler) analyze(c echo.Context) error {
	req := new(dto.AnalyzeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.AnalysisService.Analyze(c.Request().Context(), *req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("analysis completed", result))
}

func (h *HttpAPIHandler) analyzeReport(c echo.Context) error {
	req := new(dto.AnalyzeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	report, err := h.service.AnalysisService.RenderReport(c.Request().Context(), *req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(report))
}

func (h *HttpAPIHandler) analyzeBatch(c echo.Context) error {
	req := new(dto.BatchAnalyzeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	results, err := h.service.AnalysisService.AnalyzeBatch(c.Request().Context(), *req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("batch analysis completed", results))
}
