package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/vehiclemate/internal/app"
	"github.com/ukydev/vehiclemate/internal/auth"
	"github.com/ukydev/vehiclemate/internal/breakdowns"
	"github.com/ukydev/vehiclemate/internal/community"
	"github.com/ukydev/vehiclemate/internal/config"
	"github.com/ukydev/vehiclemate/internal/connectivity"
	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/db"
	"github.com/ukydev/vehiclemate/internal/garages"
	"github.com/ukydev/vehiclemate/internal/handlers"
	"github.com/ukydev/vehiclemate/internal/locations"
	"github.com/ukydev/vehiclemate/internal/middleware"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
	"github.com/ukydev/vehiclemate/internal/store"
	"github.com/ukydev/vehiclemate/internal/towing"
	"github.com/ukydev/vehiclemate/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// Default position reported by the server-side geolocator (New Delhi).
const (
	defaultLatitude  = 28.6139
	defaultLongitude = 77.2090
)

// server holds the wired application.
type server struct {
	handler  http.Handler
	app      *app.App
	observer *connectivity.Observer
	feed     *notify.Feed
	hub      *websocket.Hub
	closers  []func()
}

// close releases resources in reverse order of acquisition.
func (s *server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type sources struct {
	garages    datasource.Source[models.Garage]
	breakdowns datasource.Source[models.BreakdownReport]
	posts      datasource.Source[models.ForumPost]
}

func buildServer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*server, error) {
	s := &server{}
	ok := false
	defer func() {
		if !ok {
			s.close()
		}
	}()

	var mongoDB *mongo.Database
	if cfg.NeedsMongo() {
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		s.closers = append(s.closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				logger.WithError(err).Warn("MongoDB disconnect failed")
			}
		})
		mongoDB = client.Database(cfg.MongoDB)
		logger.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	}

	backend, err := newBackend(cfg, mongoDB)
	if err != nil {
		return nil, err
	}
	st := store.New(backend, logger)

	src, err := newSources(ctx, cfg, mongoDB, logger)
	if err != nil {
		return nil, err
	}

	s.feed = notify.NewFeed(0, logger)
	s.observer = connectivity.NewObserver(!cfg.StartOffline, s.feed, logger)

	if cfg.MQTTBroker != "" {
		client, err := connectivity.NewMQTTClient(cfg.MQTTBroker, cfg.MQTTClientID, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { client.Disconnect(250) })
		source, err := startMQTT(client, cfg.MQTTTopic, s.observer, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, source.Stop)
	}

	validate := validator.New()
	authSvc := auth.NewService(auth.Config{
		JWTSecret:    cfg.JWTSecret,
		TokenExpiry:  cfg.JWTExpiry,
		LatencyScale: cfg.LatencyScale,
	}, st, validate, logger)
	garageSvc := garages.NewService(src.garages, st, s.observer, s.feed, logger)
	breakdownSvc := breakdowns.NewService(src.breakdowns, st, s.observer, s.feed, validate, logger)
	communitySvc := community.NewService(src.posts, st, s.observer, s.feed, validate, logger)
	locationSvc := locations.NewService(locations.Fixed(defaultLatitude, defaultLongitude), st, cfg.LatencyScale, logger)
	towingSvc := towing.NewService(st, s.feed, logger)

	s.app = app.New(authSvc, s.observer, s.feed, logger, breakdownSvc)
	s.app.Start(ctx)
	s.closers = append(s.closers, s.app.Close)

	hubCtx, stopHub := context.WithCancel(ctx)
	s.hub = websocket.NewHub(s.observer, logger)
	go s.hub.Run(hubCtx)
	s.hub.Relay(hubCtx, s.feed, s.observer)
	s.closers = append(s.closers, stopHub)

	h := handlers.Handlers{
		Auth:       handlers.NewAuthHandler(s.app, logger),
		Garages:    handlers.NewGarageHandler(garageSvc, logger),
		Dashboard:  handlers.NewDashboardHandler(garages.NewDashboards(garages.SeedGarages()[0], validate), s.feed, logger),
		Breakdowns: handlers.NewBreakdownHandler(breakdownSvc, garageSvc, logger),
		Community:  handlers.NewCommunityHandler(communitySvc, logger),
		Locations:  handlers.NewLocationHandler(locationSvc, validate, logger),
		Towing:     handlers.NewTowingHandler(towingSvc, logger),
		Status:     handlers.NewStatusHandler(s.observer, s.feed, logger),
		Stream:     s.hub.ServeWS,
	}
	authMW := middleware.NewAuthMiddleware(authSvc, s.feed, logger)
	s.handler = handlers.NewRouter(h, authMW, middleware.NewRateLimitMiddleware(), cfg.RateLimit)

	ok = true
	return s, nil
}

func newBackend(cfg *config.Config, mongoDB *mongo.Database) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryBackend(), nil
	case config.BackendMongo:
		return db.NewMongoBackend(mongoDB.Collection("kv")), nil
	default:
		backend, err := store.NewFileBackend(cfg.StoreDir)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return backend, nil
	}
}

func newSources(ctx context.Context, cfg *config.Config, mongoDB *mongo.Database, logger logrus.FieldLogger) (sources, error) {
	if cfg.DataSource != config.SourceMongo {
		dsCfg := datasource.Config{LatencyScale: cfg.LatencyScale, FailureRate: cfg.FailureRate}
		return sources{
			garages:    garages.NewSeedSource(dsCfg, logger),
			breakdowns: breakdowns.NewSeedSource(dsCfg, logger),
			posts:      community.NewSeedSource(dsCfg, logger),
		}, nil
	}

	garageSrc := db.NewMongoSource[models.Garage](mongoDB.Collection("garages"), bson.D{{Key: "_id", Value: 1}})
	if err := garageSrc.SeedIfEmpty(ctx, garages.SeedGarages()); err != nil {
		return sources{}, fmt.Errorf("seed garages: %w", err)
	}
	postSrc := db.NewMongoSource[models.ForumPost](mongoDB.Collection("forum_posts"), bson.D{{Key: "created_at", Value: -1}})
	if err := postSrc.SeedIfEmpty(ctx, community.SeedPosts()); err != nil {
		return sources{}, fmt.Errorf("seed posts: %w", err)
	}
	return sources{
		garages:    garageSrc,
		breakdowns: db.NewMongoSource[models.BreakdownReport](mongoDB.Collection("breakdowns"), bson.D{{Key: "created_at", Value: 1}}),
		posts:      postSrc,
	}, nil
}

func startMQTT(client mqtt.Client, topic string, observer *connectivity.Observer, logger logrus.FieldLogger) (*connectivity.MQTTSource, error) {
	source := connectivity.NewMQTTSource(client, topic, observer, logger)
	if err := source.Start(); err != nil {
		return nil, err
	}
	return source, nil
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	s, err := buildServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}
