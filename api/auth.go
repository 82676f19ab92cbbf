package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/timknowlden/HairManager-sub001/api/model"
	"github.com/timknowlden/HairManager-sub001/api/middleware"
	"github.com/timknowlden/HairManager-sub001/internal/apierror"
)

// ownerID pulls the authenticated tenant ID set by the auth middleware.
func ownerID(c *gin.Context) string {
	return c.GetString(middleware.OwnerIDKey)
}

// respondError writes an error with the status its code maps to.
func respondError(c *gin.Context, err error) {
	c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
}

func (a Api) Register(c *gin.Context) {
	var req model2.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateRegisterRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	usr, err := a.service.RegisterUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, usr)
}

func (a Api) Login(c *gin.Context) {
	var req model2.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateLoginRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	token, err := a.service.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (a Api) GetProfile(c *gin.Context) {
	resp, err := a.service.GetProfile(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) UpdateProfile(c *gin.Context) {
	var req model2.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateUpdateProfileRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.service.UpdateProfile(c.Request.Context(), req.ToProfile(ownerID(c)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
