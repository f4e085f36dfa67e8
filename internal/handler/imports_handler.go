package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-import/api/internal/dto"
	"github.com/octobees/lead-import/api/internal/entity"
	middlewarepkg "github.com/octobees/lead-import/api/internal/middleware"
	"github.com/octobees/lead-import/api/internal/service"
	"github.com/octobees/lead-import/api/internal/service/assign"
)

// ImportsHandler exposes the import pipeline to the presentation layer.
type ImportsHandler struct {
	imports       *service.ImportService
	maxUploadSize int64
}

// NewImportsHandler wires a handler backed by the import service.
func NewImportsHandler(imports *service.ImportService, maxUploadSize int64) *ImportsHandler {
	return &ImportsHandler{imports: imports, maxUploadSize: maxUploadSize}
}

// Upload handles POST /imports requests.
func (h *ImportsHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing import file")
	}

	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		return Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds the %d byte limit", h.maxUploadSize))
	}
	if !acceptableUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		return Error(c, http.StatusUnsupportedMediaType, "expected delimited tabular data (csv)")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	createdBy, _ := c.Get(middlewarepkg.ContextKeyUserEmail).(string)

	job, err := h.imports.SubmitFile(c.Request().Context(), file, fileHeader.Filename, fileHeader.Size, createdBy)
	if err != nil {
		var validationErr service.FileValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to process file")
	}

	return Success(c, http.StatusCreated, "import job created", job)
}

// Get handles GET /imports/:id requests.
func (h *ImportsHandler) Get(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid job id")
	}

	job, err := h.imports.GetJob(jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return Error(c, http.StatusNotFound, "import job not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to fetch job")
	}
	return Success(c, http.StatusOK, "ok", job)
}

// Advance handles POST /imports/:id/advance requests.
func (h *ImportsHandler) Advance(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid job id")
	}

	var req dto.AdvanceRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	stage, ok := parseStage(req.Stage)
	if !ok {
		return Error(c, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", req.Stage))
	}

	payload := service.AdvancePayload{Strategy: entity.AssignmentStrategy(req.Strategy)}
	if req.TargetAgentID != "" {
		target, err := uuid.Parse(req.TargetAgentID)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid target agent id")
		}
		payload.TargetAgentID = target
	}

	job, err := h.imports.Advance(c.Request().Context(), jobID, stage, payload)
	if err != nil {
		return advanceError(c, err)
	}
	return Success(c, http.StatusOK, "stage advanced", job)
}

// Discard handles DELETE /imports/:id requests.
func (h *ImportsHandler) Discard(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid job id")
	}

	job, err := h.imports.Discard(jobID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			return Error(c, http.StatusNotFound, "import job not found")
		case errors.Is(err, service.ErrInvalidTransition):
			return Error(c, http.StatusConflict, err.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to discard job")
		}
	}
	return Success(c, http.StatusOK, "import job discarded", job)
}

// Export handles GET /imports/:id/export requests.
func (h *ImportsHandler) Export(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid job id")
	}

	filter, ok := parseStatusFilter(c.QueryParam("status"))
	if !ok {
		return Error(c, http.StatusBadRequest, fmt.Sprintf("unknown status filter %q", c.QueryParam("status")))
	}

	data, err := h.imports.ExportRecords(jobID, filter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			return Error(c, http.StatusNotFound, "import job not found")
		case errors.Is(err, service.ErrBatchNotReady):
			return Error(c, http.StatusConflict, "batch has not been processed yet")
		default:
			return Error(c, http.StatusInternalServerError, "failed to export records")
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "import-"+jobID.String()+".csv"))
	return c.Blob(http.StatusOK, "text/csv", data)
}

func advanceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return Error(c, http.StatusNotFound, "import job not found")
	case errors.Is(err, service.ErrJobDiscarded):
		return Error(c, http.StatusGone, "import job was discarded")
	case errors.Is(err, service.ErrTransitionInFlight):
		return Error(c, http.StatusConflict, "another transition is in progress")
	case errors.Is(err, service.ErrInvalidTransition):
		return Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, assign.ErrNoAgentsAvailable):
		return Error(c, http.StatusUnprocessableEntity, "no agents available")
	case errors.Is(err, assign.ErrInvalidTarget):
		return Error(c, http.StatusUnprocessableEntity, "target agent not in directory")
	default:
		return Error(c, http.StatusBadGateway, err.Error())
	}
}

func parseStage(value string) (entity.Stage, bool) {
	stage := entity.Stage(strings.ToLower(strings.TrimSpace(value)))
	switch stage {
	case entity.StageCleansed, entity.StagePreviewApproved, entity.StageAssigned, entity.StageCompleted:
		return stage, true
	default:
		return "", false
	}
}

func parseStatusFilter(value string) (entity.RecordStatus, bool) {
	status := entity.RecordStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case "", entity.StatusOK, entity.StatusCorrected, entity.StatusEnriched, entity.StatusFailed:
		return status, true
	default:
		return "", false
	}
}

func acceptableUpload(filename, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "text/csv", "application/csv", "text/plain":
		return true
	default:
		return false
	}
}
