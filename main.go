package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
	"socialflow/infrastructure/cache"
	"socialflow/infrastructure/clients/oauthprovider"
	"socialflow/infrastructure/configuration"
	"socialflow/infrastructure/logger"
	"socialflow/infrastructure/persistence"
	"socialflow/infrastructure/pubsub"
	"socialflow/infrastructure/realtime"
	"socialflow/infrastructure/scheduler"
	"socialflow/infrastructure/servicebus"
	httpHandler "socialflow/interfaces/http"
	"socialflow/server"
	"socialflow/usecase"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"golang.org/x/sync/errgroup"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configuration.LoadEnvFromFile("config.env", ".env")
	app := configuration.C.App
	loc := configuration.Location()

	g, ctx := errgroup.WithContext(ctx)

	pg := initiatePostgres()
	if pg != nil {
		defer pg.Close()
	}
	connections := initiateConnectionStore(pg)
	posts := initiatePostStore(pg)
	handshakes := initiateHandshakeStore(ctx)
	audit := initiateAudit(ctx)
	newsletter := initiateNewsletterStore()

	var (
		events    repository.IPostEvents
		publisher pubsub.IPublisher
	)
	if client, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - post events disabled")
	} else {
		p := pubsub.NewPublisher(client)
		defer p.Stop()
		publisher = p
		events = pubsub.NewPostEvents(p, configuration.C.Pubsub.EventsTopic)
	}
	delivery, err := pubsub.SelectDelivery(configuration.C.Delivery.Mode, publisher, configuration.C.Delivery.Topic)
	if err != nil {
		logger.GetLogger().WithField("mode", configuration.C.Delivery.Mode).WithField("error", err).Error("Cannot initialize delivery")
		os.Exit(1)
	}
	logger.GetLogger().WithField("mode", configuration.C.Delivery.Mode).Info("Delivery initialized")

	var (
		queue    repository.IDispatchQueue
		receiver *azservicebus.Receiver
	)
	if sb, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - relying on the cron sweep for scheduled posts")
	} else {
		defer sb.Close(context.Background())
		sender, err := sb.NewSender(configuration.C.ServiceBus.Queue, nil)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot create Service Bus sender")
		} else {
			queue = servicebus.NewDispatchQueue(sender)
		}
		if receiver, err = sb.NewReceiverForQueue(configuration.C.ServiceBus.Queue, nil); err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot create Service Bus receiver")
			receiver = nil
		}
	}

	provider := oauthprovider.New(oauthCredentials())
	sessions := usecase.NewSessionManager(connections, handshakes, provider, loc)

	hub := realtime.NewPostHub()
	lifecycle := usecase.NewPostLifecycle(posts, delivery, sessions, audit, events, queue).
		WithBroadcaster(hub.BroadcastPost)

	cloudinary := configuration.C.Cloudinary
	media := usecase.NewMediaUsecase(usecase.CloudinaryCredentials{
		CloudName: cloudinary.CloudName,
		APIKey:    cloudinary.APIKey,
		APISecret: cloudinary.APISecret,
	})

	router := server.InitiateRouter(server.Handlers{
		Connection: httpHandler.NewConnectionHandler(sessions),
		Draft:      httpHandler.NewDraftHandler(sessions, lifecycle),
		Post:       httpHandler.NewPostHandler(lifecycle, loc),
		Media:      httpHandler.NewMediaHandler(media),
		Newsletter: httpHandler.NewNewsletterHandler(usecase.NewNewsletterUsecase(newsletter)),
		Hub:        hub,
	}, app.SecretKey, app.AllowedOrigins)

	sched := scheduler.New(loc)
	if err := sched.AddDispatchJob(configuration.C.Scheduler.Spec, configuration.C.Scheduler.BatchSize, lifecycle); err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot register dispatch sweep")
	}
	idle := time.Duration(configuration.C.Scheduler.SessionIdleMinutes) * time.Minute
	if err := sched.AddJob("evict-sessions", "@every 5m", func(context.Context) error {
		if n := sessions.EvictIdle(idle); n > 0 {
			logger.GetLogger().WithField("evicted", n).Info("idle sessions evicted")
		}
		return nil
	}); err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot register session eviction")
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	if receiver != nil {
		consumer := servicebus.NewDispatchConsumer(receiver, lifecycle)
		g.Go(func() error {
			if err := consumer.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.GetLogger().Info("Application shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// initiatePostgres opens the shared PostgreSQL pool and ensures its schema. It returns nil
// when the database is not reachable.
func initiatePostgres() *sql.DB {
	db, err := persistence.NewPostgreSQLDB()
	if err == nil {
		if err = persistence.EnsureSchema(db); err == nil {
			return db
		}
		_ = db.Close()
	}
	logger.GetLogger().WithField("error", err).Warn("PostgreSQL not available")
	return nil
}

// initiateConnectionStore picks the connection store from Database.Vendor. Without
// a reachable database connections only live in memory.
func initiateConnectionStore(pg *sql.DB) repository.IConnection {
	if configuration.C.Database.Vendor == "mssql" {
		db, err := persistence.NewMSSQLDB()
		if err == nil {
			if err = persistence.EnsureConnectionSchemaMSSQL(db); err == nil {
				return persistence.NewConnectionRepositoryMSSQL(db)
			}
		}
		logger.GetLogger().WithField("error", err).Warn("SQL Server not available - connections are kept in memory")
		return nil
	}
	if pg == nil {
		logger.GetLogger().Warn("Connections are kept in memory")
		return nil
	}
	return persistence.NewConnectionRepository(pg)
}

func initiatePostStore(pg *sql.DB) repository.IPost {
	if pg == nil {
		logger.GetLogger().Warn("Posts are kept in memory")
		return persistence.NewMemoryPostRepository()
	}
	return persistence.NewPostRepository(pg)
}

func initiateHandshakeStore(ctx context.Context) repository.IHandshakeStore {
	rc := configuration.C.RedisClient
	db, _ := strconv.Atoi(rc.DatabaseName)
	client, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", rc.Host, rc.Port), rc.Username, rc.Password, db)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - OAuth handshakes are kept in memory")
		return cache.NewMemoryHandshakeStore(configuration.HandshakeTTL())
	}
	return cache.NewHandshakeStore(client, configuration.HandshakeTTL())
}

func initiateAudit(ctx context.Context) repository.IPostAudit {
	mc := configuration.C.Database.Mongo
	client, err := persistence.NewMongoDb(ctx, mc.Host, mc.Port, mc.User, mc.Password)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - post audit disabled")
		return nil
	}
	return persistence.NewPostAuditRepository(client, mc.Name)
}

func initiateNewsletterStore() repository.INewsletter {
	db, err := persistence.NewRepositories()
	if err == nil {
		repo := persistence.NewNewsletterRepository(db)
		if err = repo.AutoMigrate(); err == nil {
			return repo
		}
	}
	logger.GetLogger().WithField("error", err).Warn("MySQL not available - newsletter sign-ups are kept in memory")
	return persistence.NewMemoryNewsletterRepository()
}

func oauthCredentials() map[model.Platform]oauthprovider.Credentials {
	creds := make(map[model.Platform]oauthprovider.Credentials, len(model.Platforms()))
	for _, p := range model.Platforms() {
		client, err := configuration.PlatformClient(p)
		if err != nil {
			continue
		}
		creds[p] = oauthprovider.Credentials{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			RedirectURL:  client.RedirectURI,
			Scopes:       client.Scopes,
		}
	}
	return creds
}
