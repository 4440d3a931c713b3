package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/labguard/labguard-backend/client"
	"github.com/labguard/labguard-backend/dto"
	"github.com/labguard/labguard-backend/service"
)

type ChatHandler struct {
	reportService *service.ReportService
	trendService  *service.TrendService
	botClient     *client.BotClient
}

func NewChatHandler(reportService *service.ReportService, trendService *service.TrendService, botClient *client.BotClient) *ChatHandler {
	return &ChatHandler{reportService: reportService, trendService: trendService, botClient: botClient}
}

// Chat handles POST /accounts/:accountId/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var request dto.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	accountID := c.Param("accountId")
	reports, err := h.reportService.ListReports(c.Request.Context(), accountID)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	rows := h.trendService.FlattenForBot(reports)
	response, err := h.botClient.Chat(c.Request.Context(), request.Question, rows)
	if err != nil {
		log.Error().Err(err).Str("account", accountID).Msg("bot call failed")
		sendError(c, http.StatusBadGateway, "BOT_UNAVAILABLE", "narrative service did not answer")
		return
	}

	c.JSON(http.StatusOK, response)
}
