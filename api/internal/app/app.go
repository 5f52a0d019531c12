package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stackspay/api/internal/config"
	"stackspay/api/internal/delivery"
	"stackspay/api/internal/infra/nats"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/service"

	"github.com/gin-gonic/gin"
	cors "github.com/rs/cors/wrapper/gin"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	Db        *gorm.DB
	NatsInfra *nats.NatsInfra
	Log       logger.Logger
}

func (app *App) Start() {

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(cors.Default())

	services := service.NewServices(app.NatsInfra, app.Db, app.Log, app.Config)

	app.Autostart(services)

	{
		h := delivery.InitHandler(services, app.Db, app.Config, app.NatsInfra, app.Log)

		h.InitAPI(r)
	}

	eChan := make(chan error)
	interrupt := make(chan os.Signal, 1)

	fmt.Println("stackspay web is starting")

	go func() {
		err := r.Run(app.Config.Api.Ipv4)
		if err != nil {
			eChan <- fmt.Errorf("listen and serve: %w", err)
		}
	}()

	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-eChan:
		app.Log.TemplHTTPError("app fatal error", app.Config.Api.Ipv4, err)
		return
	case <-interrupt:
		return
	}

}

// start autostart services
func (app *App) Autostart(services *service.Services) {

	fmt.Println("Autostart: sweep expired payments")
	services.Expiry.RunFindExpired()
	services.Expiry.StartSweeper()

	fmt.Println("Autostart: restart payment monitors")
	services.Monitor.RunAutostartCheck()

	fmt.Println("Autostart: start process events")
	services.OutboxEvents.StartProcessEvents()

}
