package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/config"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/service"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/store"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/store/mongo"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/store/mysql"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 ORIGIN=https://cards.example.com GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}
	cfg.Logging()

	cards, closeStore := openStore(cfg)
	defer closeStore()

	service.SetupStore(cards)
	service.SetupOrigin(cfg.Origin)
	service.SetupTrustProxy(cfg.TrustProxy)
	service.SetupPhotos(cfg.PhotoDir)
	router := service.SetupHttpRouter(cfg.GinLogging)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("business card service running at port %d with %s store", cfg.Port, cfg.Store)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("business card service shutdown failed: %+v", err)
		return
	}
	log.Info("business card service gracefully stopped")
}

// openStore connects to the configured card store. The returned function releases it.
func openStore(cfg config.Config) (store.Store, func()) {
	switch cfg.Store {
	case config.StoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("could not connect to MongoDB: %s", err)
		}
		log.Info("mongo connection established successfully")
		return mongo.NewStore(db.Collection(mongo.Collection)), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(ctx); err != nil {
				log.Warnf("could not disconnect from MongoDB: %s", err)
			}
		}
	default:
		sqlDB, err := mysql.CreateDatabase(cfg.DBUser, cfg.DBPwd, cfg.DBHost, cfg.DBName)
		if err != nil {
			log.Fatalf("could not open database: %s", err)
		}
		s, err := mysql.NewStore(sqlDB)
		if err != nil {
			log.Fatalf("could not prepare statements: %s", err)
		}
		log.Info("mysql connection established successfully")
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warnf("could not close database: %s", err)
			}
		}
	}
}
