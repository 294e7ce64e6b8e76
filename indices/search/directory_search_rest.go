package search

import (
	"net/http"

	"batiplan/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterSearchHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/search", middleWares...)

	g.GET("employees", handleSearchEmployees)
	g.GET("chantiers", handleSearchChantiers)
}

func handleSearchEmployees(c *gin.Context) {
	query := DirectoryQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	employees, err := SearchEmployeesFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, employees)
}

func handleSearchChantiers(c *gin.Context) {
	query := DirectoryQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	chantiers, err := SearchChantiersFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, chantiers)
}
