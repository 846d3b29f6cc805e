package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/models"
	"github.com/sittawut/coverage-admin/repository"
	"github.com/sittawut/coverage-admin/validation"
	"go.uber.org/zap"
)

type ClientHandler struct {
	store  repository.Store
	logger *zap.Logger
}

func NewClientHandler(store repository.Store, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		store:  store,
		logger: logger,
	}
}

func (h *ClientHandler) GetClients(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, present, ok := queryID(c, "id", "Client")
	if !ok {
		return
	}
	if present {
		client, err := h.store.GetClientByID(ctx, clientID)
		if err != nil {
			respondError(c, h.logger, err, "Client not found")
			return
		}
		c.JSON(http.StatusOK, client)
		return
	}

	clients, err := h.store.ListClients(ctx)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	values, ok := decodeBody(c, h.logger, validation.CreateClient)
	if !ok {
		return
	}
	client, err := h.store.CreateClient(c.Request.Context(), models.Fields(values))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	clientID, ok := requiredID(c, "Client")
	if !ok {
		return
	}
	values, ok := decodeBody(c, h.logger, validation.UpdateClient)
	if !ok {
		return
	}
	client, err := h.store.UpdateClient(c.Request.Context(), clientID, models.Fields(values))
	if err != nil {
		respondError(c, h.logger, err, "Client not found")
		return
	}
	c.JSON(http.StatusOK, client)
}
