package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	model2 "github.com/timknowlden/HairManager-sub001/api/model"
	"github.com/timknowlden/HairManager-sub001/model"
)

// IngestDeliveryEvents receives the provider's webhook batch. A malformed
// body is the only rejection; events that match nothing are dropped and the
// endpoint always acknowledges so the provider does not retry forever.
func (a Api) IngestDeliveryEvents(c *gin.Context) {
	var events []model.DeliveryEvent
	if err := c.ShouldBindJSON(&events); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	result := a.service.IngestDeliveryEvents(c.Request.Context(), events)
	c.JSON(http.StatusOK, result)
}

func (a Api) SendInvoiceEmail(c *gin.Context) {
	var req model2.SendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateSendInvoiceRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	logs, err := a.service.SendInvoiceEmail(c.Request.Context(), req.ToInvoiceEmail(ownerID(c)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, logs)
}

func (a Api) GetAllEmailLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	resp, err := a.service.GetEmailLogs(c.Request.Context(), ownerID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetEmailLog(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.service.GetEmailLog(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) OverrideEmailLogStatus(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var req model2.OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateOverrideStatusRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.service.OverrideEmailLogStatus(c.Request.Context(), ownerID(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) RefreshDeliveryStatus(c *gin.Context) {
	resp, err := a.service.RefreshDeliveryStatus(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
