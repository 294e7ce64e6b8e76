package training

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

func RegisterTrainingsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/trainings", middleWares...)

	g.GET("", handleQueryTrainings)
	g.GET(":id", handleDetailTraining)
	g.POST("", handleCreateTraining)
	g.PUT(":id", handleUpdateTraining)
	g.DELETE(":id", handleDeleteTraining)

	g.POST(":id/attendees", handleAddAttendee)
	g.DELETE(":id/attendees/:employeeId", handleRemoveAttendee)
}

func parseId(c *gin.Context, param string) (types.ID, bool) {
	id, err := types.ParseID(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param(param) + "'"})
		return 0, false
	}
	return id, true
}

func handleQueryTrainings(c *gin.Context) {
	trainings, err := QueryTrainingsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, trainings)
}

func handleDetailTraining(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	detail, err := DetailTrainingFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func handleCreateTraining(c *gin.Context) {
	creation := domain.TrainingCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	training, err := CreateTrainingFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, training)
}

func handleUpdateTraining(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	updating := domain.TrainingUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	training, err := UpdateTrainingFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, training)
}

func handleDeleteTraining(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	if err := DeleteTrainingFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

type attendeeCreation struct {
	EmployeeID types.ID `json:"employeeId" binding:"required"`
}

func handleAddAttendee(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	creation := attendeeCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := AddAttendeeFunc(id, creation.EmployeeID, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusCreated)
}

func handleRemoveAttendee(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	employeeId, ok := parseId(c, "employeeId")
	if !ok {
		return
	}
	if err := RemoveAttendeeFunc(id, employeeId, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
