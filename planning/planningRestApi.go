package planning

import (
	"net/http"
	"time"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/domain/chantier"
	"batiplan/domain/employee"
	"batiplan/misc"
	"batiplan/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterPlanningHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/planning", middleWares...)

	g.GET("board", handleBoard)
	g.POST("gestures", handleGesture)
}

type BoardQuery struct {
	Week string `form:"week"`
}

type BoardView struct {
	WeekStart   time.Time           `json:"weekStart"`
	Assignments []domain.Assignment `json:"assignments"`
	Chantiers   []domain.Chantier   `json:"chantiers"`

	WeeklyLoads     map[string]float64 `json:"weeklyLoads"`
	UnassignedCount int                `json:"unassignedCount"`
}

// GestureRequest carries a whole drag gesture plus the confirmation prompts
// the operator has already answered yes to. The first unanswered prompt is
// surfaced as 409 so the client can ask and resubmit.
type GestureRequest struct {
	Payload DragPayload `json:"payload" binding:"required"`
	Target  *DropTarget `json:"target"`

	Confirmations []string `json:"confirmations"`
}

func handleBoard(c *gin.Context) {
	query := BoardQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	weekRef := time.Now()
	if query.Week != "" {
		parsed, err := time.Parse("2006-01-02", query.Week)
		if err != nil {
			c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid week '" + query.Week + "'"})
			return
		}
		weekRef = parsed
	}
	weekStart := WeekStart(weekRef)

	sec := session.ExtractSessionFromGinContext(c)

	store := NewStore()
	if err := store.Reload(sec); err != nil {
		panic(err)
	}
	employees, err := employee.QueryEmployeesFunc(&domain.EmployeeQuery{}, sec)
	if err != nil {
		panic(err)
	}
	chantiers, err := chantier.QueryChantiersFunc(&domain.ChantierQuery{Schedulable: true}, sec)
	if err != nil {
		panic(err)
	}

	loads := map[string]float64{}
	for id, hours := range store.WeeklyLoads(weekStart) {
		loads[id.String()] = hours
	}

	c.JSON(http.StatusOK, &BoardView{
		WeekStart:       weekStart,
		Assignments:     store.Snapshot(),
		Chantiers:       chantiers,
		WeeklyLoads:     loads,
		UnassignedCount: store.UnassignedCount(employees, weekStart),
	})
}

func handleGesture(c *gin.Context) {
	request := GestureRequest{}
	if err := c.ShouldBindBodyWith(&request, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	sec := session.ExtractSessionFromGinContext(c)
	if !sec.CanManagePlanning() {
		panic(bizerror.ErrForbidden)
	}

	store := NewStore()
	if err := store.Reload(sec); err != nil {
		panic(err)
	}
	employees, err := employee.QueryEmployeesFunc(&domain.EmployeeQuery{}, sec)
	if err != nil {
		panic(err)
	}
	chantiers, err := chantier.QueryChantiersFunc(&domain.ChantierQuery{}, sec)
	if err != nil {
		panic(err)
	}

	orchestrator := NewOrchestrator(store, AckConfirmer(request.Confirmations), LogNotifier())
	orchestrator.SetDirectory(employees, chantiers)

	if err := orchestrator.OnDragStart(request.Payload); err != nil {
		panic(err)
	}
	result, err := orchestrator.OnDragEnd(request.Target, sec)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

// AckConfirmer answers prompts from a list the operator has already accepted.
// An unanswered prompt aborts the gesture with ErrConfirmationRequired, which
// the error middleware turns into 409 + the pending prompt.
func AckConfirmer(acknowledged []string) Confirmer {
	acked := map[string]bool{}
	for _, message := range acknowledged {
		acked[message] = true
	}
	return ConfirmerFunc(func(message string) (bool, error) {
		if acked[message] {
			return true, nil
		}
		return false, &bizerror.ErrConfirmationRequired{Prompt: message}
	})
}
