package chantier

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

func RegisterChantiersHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/chantiers", middleWares...)

	g.GET("", handleQueryChantiers)
	g.GET(":id", handleDetailChantier)
	g.POST("", handleCreateChantier)
	g.PUT(":id", handleUpdateChantier)
	g.DELETE(":id", handleDeleteChantier)
}

func parseIdOrAbort(c *gin.Context) (types.ID, bool) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return 0, false
	}
	return id, true
}

func handleQueryChantiers(c *gin.Context) {
	query := domain.ChantierQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	chantiers, err := QueryChantiersFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, chantiers)
}

func handleDetailChantier(c *gin.Context) {
	id, ok := parseIdOrAbort(c)
	if !ok {
		return
	}
	chantier, err := DetailChantierFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, chantier)
}

func handleCreateChantier(c *gin.Context) {
	creation := domain.ChantierCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	chantier, err := CreateChantierFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, chantier)
}

func handleUpdateChantier(c *gin.Context) {
	id, ok := parseIdOrAbort(c)
	if !ok {
		return
	}
	updating := domain.ChantierUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	chantier, err := UpdateChantierFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, chantier)
}

func handleDeleteChantier(c *gin.Context) {
	id, ok := parseIdOrAbort(c)
	if !ok {
		return
	}
	if err := DeleteChantierFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
