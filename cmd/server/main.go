package main

import (
	"context"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/studycircle/feedmux/feed"
	"github.com/studycircle/feedmux/notifier"
	"github.com/studycircle/feedmux/server"
	"github.com/studycircle/feedmux/server/middlewares"
	"github.com/studycircle/feedmux/utils"
	"github.com/studycircle/feedmux/utils/dotenv"
	. "github.com/studycircle/feedmux/utils/flag"
	. "github.com/studycircle/feedmux/utils/log"
)

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Log.Info("api server shutdown")
}

func newStatsdClient() *statsd.Client {
	addr := os.Getenv("DD_AGENT_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8125"
	}
	client, err := statsd.New(addr)
	if err != nil {
		Log.Warn("statsd client unavailable, metrics disabled: ", err)
		return nil
	}
	return client
}

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	utils.StartTracer()
	utils.StartProfiler()
	defer cleanup()

	db, err := utils.GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect to database: ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	// In-process event bus between friend-graph mutations and the
	// notification writer. Can be substituted with a broker-backed bus
	// without touching either side.
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	dispatcher := notifier.NewDispatcher(bus)
	writer := notifier.NewWriter(db, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := writer.Run(ctx); err != nil {
			Log.Error("notification writer exited: ", err)
		}
	}()

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(ServiceName))
	if !ByPassAuth {
		middlewares.Setup()
		router.Use(middlewares.JWT())
	}

	assembler := &feed.Assembler{DB: db, Metrics: newStatsdClient()}
	server.RegisterRoutes(router, &server.Handler{
		DB:         db,
		Assembler:  assembler,
		Dispatcher: dispatcher,
		Redis:      utils.GetRedisClient(),
	})

	Log.Info("api server starts up")
	router.Run(":8080")
}
