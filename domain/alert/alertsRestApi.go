package alert

import (
	"net/http"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/misc"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterAlertsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/alerts", middleWares...)

	g.GET("", handleQueryAlerts)
	g.POST("", handleCreateAlert)
	g.PUT(":id/read", handleMarkAlert)
	g.DELETE(":id", handleDeleteAlert)
}

func handleQueryAlerts(c *gin.Context) {
	query := domain.AlertQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	alerts, err := QueryAlertsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, alerts)
}

func handleCreateAlert(c *gin.Context) {
	creation := domain.AlertCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	alert, err := CreateAlertFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, alert)
}

type markRequest struct {
	Read *bool `json:"read" binding:"required"`
}

func handleMarkAlert(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	request := markRequest{}
	if err := c.ShouldBindBodyWith(&request, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := MarkAlertFunc(id, *request.Read, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteAlert(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	if err := DeleteAlertFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
