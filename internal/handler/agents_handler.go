package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-import/api/internal/dto"
	"github.com/octobees/lead-import/api/internal/repository"
)

// AgentsHandler manages the sales agents roster used for assignment.
type AgentsHandler struct {
	agents repository.AgentsRepository
}

// NewAgentsHandler wires a handler backed by the agents repository.
func NewAgentsHandler(agents repository.AgentsRepository) *AgentsHandler {
	return &AgentsHandler{agents: agents}
}

// List handles GET /admin/agents requests.
func (h *AgentsHandler) List(c echo.Context) error {
	agents, err := h.agents.ListAgents(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list agents")
	}
	return Success(c, http.StatusOK, "ok", agents)
}

// Create handles POST /admin/agents requests.
func (h *AgentsHandler) Create(c echo.Context) error {
	var req dto.CreateAgentRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		return Error(c, http.StatusBadRequest, "name and email are required")
	}
	if req.ConversionWeight <= 0 {
		req.ConversionWeight = 1.0
	}

	agent, err := h.agents.CreateAgent(c.Request().Context(), req.Name, req.Email, strings.TrimSpace(req.Specialty), req.ConversionWeight)
	if err != nil {
		if errors.Is(err, repository.ErrAgentEmailDuplicate) {
			return Error(c, http.StatusConflict, "agent email already exists")
		}
		return Error(c, http.StatusInternalServerError, "failed to create agent")
	}

	return Success(c, http.StatusCreated, "agent created", agent)
}
