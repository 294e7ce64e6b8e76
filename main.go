package main

import (
	"log"
	"net/http"
	"os"

	"batiplan/account"
	"batiplan/bizerror"
	"batiplan/client/es"
	"batiplan/client/s3"
	"batiplan/domain"
	"batiplan/domain/alert"
	"batiplan/domain/assignment"
	"batiplan/domain/chantier"
	"batiplan/domain/document"
	"batiplan/domain/employee"
	"batiplan/domain/training"
	"batiplan/event"
	"batiplan/indices"
	"batiplan/indices/search"
	"batiplan/infra/tracing"
	"batiplan/notify"
	"batiplan/persistence"
	"batiplan/planning"
	"batiplan/session"
	"batiplan/sessions"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{},
		&event.EventRecord{},
		&domain.Employee{},
		&domain.Chantier{},
		&domain.Assignment{},
		&domain.TrainingSession{},
		&domain.TrainingAttendee{},
		&domain.Document{},
		&domain.Alert{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.EnsureDefaultAdmin(); err != nil {
		log.Fatalf("failed to ensure default admin %v\n", err)
	}

	tracingCloser, err := tracing.Bootstrap()
	if err != nil {
		log.Fatalf("failed to bootstrap tracing %v\n", err)
	}
	defer tracingCloser.Close()

	es.CreateClientFromEnv()
	s3.Bootstrap()
	if err := notify.Bootstrap(); err != nil {
		logrus.WithError(err).Warn("alert broker unavailable, mail notification disabled")
	}
	defer notify.Close()

	event.EventHandlers = append(event.EventHandlers,
		indices.IndexEmployeeEventHandle, indices.IndexChantierEventHandle)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "batiplan")
	})

	sessions.RegisterSessionsHandler(engine)
	account.RegisterUsersHandler(engine, session.SimpleAuthFilter())

	employee.RegisterEmployeesHandler(engine, session.SimpleAuthFilter())
	chantier.RegisterChantiersHandler(engine, session.SimpleAuthFilter())
	assignment.RegisterAssignmentsHandler(engine, session.SimpleAuthFilter())
	planning.RegisterPlanningHandler(engine, session.SimpleAuthFilter())
	training.RegisterTrainingsHandler(engine, session.SimpleAuthFilter())
	document.RegisterDocumentsHandler(engine, session.SimpleAuthFilter())
	alert.RegisterAlertsHandler(engine, session.SimpleAuthFilter())
	search.RegisterSearchHandler(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())

	addr := os.Getenv("BIND_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := engine.Run(addr); err != nil {
		panic(err)
	}
}
