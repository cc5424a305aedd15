package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/farmstore/config"
	"github.com/niksmo/farmstore/internal/adapter/catalog"
	"github.com/niksmo/farmstore/internal/adapter/httphandler"
	"github.com/niksmo/farmstore/internal/adapter/kafka"
	"github.com/niksmo/farmstore/internal/adapter/launcher"
	"github.com/niksmo/farmstore/internal/adapter/storage"
	"github.com/niksmo/farmstore/internal/core/ordermsg"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/niksmo/farmstore/internal/core/service"
	"github.com/niksmo/farmstore/pkg/phone"
	"github.com/niksmo/farmstore/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type coreService struct {
	sessions *service.Sessions
	catalog  *service.Catalog
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	stores     *storage.Backend
	brokerTLS  *tls.Config
	orderSerde schema.Serde
	orders     *kafka.OrderProducer
	service    coreService
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStore()
	app.initSerdes()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func InitLogger(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initLogger() {
	InitLogger(app.cfg.LogLevel)
}

func (app *App) initStore() {
	const op = "App.initStore"

	s := app.cfg.Store
	stores, err := storage.Open(app.ctx, storage.Options{
		Driver:    s.Driver,
		FileDir:   s.FileDir,
		RedisAddr: s.RedisAddr,
		SQLDB:     s.SQLDB,
	})
	if err != nil {
		app.fallDown(op, err)
	}
	app.stores = stores
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	if !app.cfg.Broker.Enabled() {
		slog.Info("order events are disabled", "op", op)
		return
	}

	t := app.cfg.Broker.TLS
	tlsCfg, err := kafka.TLSConfig(t.CAFile, t.CertFile, t.KeyFile)
	if err != nil {
		app.fallDown(op, err)
	}
	app.brokerTLS = tlsCfg

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if tlsCfg != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(tlsCfg))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	orderSerde, err := schema.NewSerdeOrderDispatchedV1(
		app.ctx,
		schema.SubjectOpt(schema.TopicSubject(app.cfg.Broker.Topics.Orders)),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.orderSerde = orderSerde
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	if app.orderSerde == nil {
		return
	}

	orders, err := kafka.NewOrderProducer(
		kafka.ProducerClientOpt(
			app.ctx,
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.Topics.Orders,
			app.brokerTLS,
		),
		kafka.ProducerEncoderOpt(app.orderSerde),
		kafka.ProducerCurrencyOpt(app.cfg.Checkout.CurrencySymbol),
		kafka.ProducerPhoneRegionOpt(app.cfg.Checkout.PhoneRegion),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.orders = &orders
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	c := app.cfg.Catalog
	client, err := catalog.NewClient(c.APIURL,
		catalog.TimeoutOpt(c.Timeout),
		catalog.IDFieldOpt(c.IDField),
		catalog.RetryOpt(c.MaxAttempts, nil),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	destID, err := phone.DestinationID(
		app.cfg.Checkout.DestinationID, app.cfg.Checkout.PhoneRegion,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	var observers []port.CheckoutObserver
	if app.orders != nil {
		observers = append(observers, app.orders)
	}

	app.service = coreService{
		catalog: service.NewCatalog(client, client),
		sessions: service.NewSessions(app.stores, service.SessionsConfig{
			BaseKey:     app.cfg.Store.Key,
			IdleTimeout: app.cfg.Store.SessionIdleTimeout,
			Checkout: service.CheckoutConfig{
				MessagingBaseURL: app.cfg.Checkout.MessagingBaseURL,
				DestinationID:    destID,
				Formatter: ordermsg.New(
					app.cfg.Checkout.StoreName, app.cfg.Checkout.CurrencySymbol,
				),
				Opener:    launcher.NewRelay(),
				Observers: observers,
			},
		}),
	}
}

func (app *App) initInboundAdapters() {
	handler := httphandler.NewMux(httphandler.Handlers{
		Products: app.service.catalog,
		Sessions: app.service.sessions,
		Admin:    app.service.catalog,
	})
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.HandlerTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)
	go app.refreshCatalog()

	slog.Info("application is running")
}

// refreshCatalog loads the catalog at startup and then every refresh
// interval until the app context is done.
func (app *App) refreshCatalog() {
	const op = "App.refreshCatalog"
	log := slog.With("op", op)

	refresh := func() {
		if err := app.service.catalog.Refresh(app.ctx); err != nil {
			log.Warn("catalog refresh failed", "err", err)
		}
	}

	refresh()

	interval := app.cfg.Catalog.RefreshInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.orders != nil {
		app.orders.Close()
	}
	if app.stores != nil {
		app.stores.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
