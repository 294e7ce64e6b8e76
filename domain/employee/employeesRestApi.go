package employee

import (
	"io"
	"net/http"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/misc"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterEmployeesHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/employees", middleWares...)

	g.GET("", handleQueryEmployees)
	g.GET(":id", handleDetailEmployee)
	g.POST("", handleCreateEmployee)
	g.PUT(":id", handleUpdateEmployee)
	g.DELETE(":id", handleDeleteEmployee)

	g.GET(":id/photo", handleDetailPhoto)
	g.PUT(":id/photo", handleUploadPhoto)
}

func parseIdOrAbort(c *gin.Context) (types.ID, bool) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return 0, false
	}
	return id, true
}

func handleQueryEmployees(c *gin.Context) {
	query := domain.EmployeeQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	employees, err := QueryEmployeesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, employees)
}

func handleDetailEmployee(c *gin.Context) {
	id, ok := parseIdOrAbort(c)
	if !ok {
		return
	}
	employee, err := DetailEmployeeFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, employee)
}

func handleCreateEmployee(c *gin.Context) {
	creation := domain.EmployeeCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	employee, err := CreateEmployeeFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func handleUpdateEmployee(c *gin.Context) {
	id, ok := parseIdOrAbort(c)
	if !ok {
		return
	}
	updating := domain.EmployeeUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	employee, err := UpdateEmployeeFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, employee)
}

func handleDeleteEmployee(c *gin.Context) {
	id, ok := parseIdOrAbort(c)
	if !ok {
		return
	}
	if err := DeleteEmployeeFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDetailPhoto(c *gin.Context) {
	id, ok := parseIdOrAbort(c)
	if !ok {
		return
	}
	r, err := DetailPhoto(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	defer r.Close()

	c.Status(http.StatusOK)
	c.Header("Content-Type", "image/png")
	_, _ = io.Copy(c.Writer, r)
}

func handleUploadPhoto(c *gin.Context) {
	id, ok := parseIdOrAbort(c)
	if !ok {
		return
	}
	if err := UploadPhoto(id, c.Request.Body, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
