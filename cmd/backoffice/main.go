package main

import (
	"context"
	"time"
	appointmentshandler "travelbook/internal/appointments/handler"
	appointmentsrepo "travelbook/internal/appointments/repository"
	appointmentsservice "travelbook/internal/appointments/service"
	appointmentsvalidator "travelbook/internal/appointments/validator"
	invoiceshandler "travelbook/internal/invoices/handler"
	"travelbook/internal/invoices/render"
	invoicesrepo "travelbook/internal/invoices/repository"
	invoicesservice "travelbook/internal/invoices/service"
	invoicesvalidator "travelbook/internal/invoices/validator"
	recyclebinhandler "travelbook/internal/recyclebin/handler"
	recyclebinrepo "travelbook/internal/recyclebin/repository"
	recyclebinservice "travelbook/internal/recyclebin/service"
	requestshandler "travelbook/internal/requests/handler"
	requestsrepo "travelbook/internal/requests/repository"
	requestsservice "travelbook/internal/requests/service"
	requestsvalidator "travelbook/internal/requests/validator"
	"travelbook/pkg/app"
	"travelbook/pkg/cache"
	"travelbook/pkg/config"
	"travelbook/pkg/events"
	"travelbook/pkg/kafka"
	kafka_config "travelbook/pkg/kafka/config"
	kafkamiddleware "travelbook/pkg/kafka/middleware"
	"travelbook/pkg/middleware"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/sealer"
)

const (
	serviceName = "backoffice"
	warmUpLimit = 30 * time.Second
)

func main() {
	cfg := config.Load(serviceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	cfg.SetRedis()

	store := recordstore.NewMongoStore(cfg.Client.Mongo, recordstore.MongoOptions{
		Database:     cfg.MongoDatabaseName,
		Transactions: cfg.MongoTransactions,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	})

	board := cache.New(cfg.Client.Redis, "board", cfg.CacheTTL, cfg.Log)
	invoiceSettings := cache.New(cfg.Client.Redis, "invoice-settings", cfg.CacheTTL, cfg.Log)

	bus := events.NewBus(newSink(cfg), cfg.Log)
	bus.ResolveOrganization(middleware.OrganizationID)

	application := app.NewApplication(cfg)
	application.OnShutdown(bus)

	grid, err := appointmentsservice.NewGrid(cfg.SlotDayStart, cfg.SlotDayEnd, cfg.SlotStepMinutes)
	if err != nil {
		cfg.Log.Fatal("Invalid slot grid", "error", err)
	}

	bin := recyclebinrepo.NewDeletedItemRepository(store)
	slots := appointmentsrepo.NewSlotRepository(store)
	binService := recyclebinservice.NewRecycleBinService(bin, slots, bus, cfg)

	appointmentService := appointmentsservice.NewAppointmentService(
		slots,
		appointmentsrepo.NewBookingRepository(store),
		bin,
		appointmentsvalidator.NewAppointmentValidator(cfg.Log),
		grid,
		board,
		bus,
		cfg,
	)
	unsubscribe := appointmentsservice.InvalidateBoardOn(bus, board)
	defer unsubscribe()

	requestService := requestsservice.NewRequestService(
		requestsrepo.NewRequestRepository(store),
		bin,
		requestsvalidator.NewRequestValidator(cfg.Log),
		bus,
		cfg,
	)

	seal, err := sealer.New(cfg.InvoiceSealKey)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize invoice sealer", "error", err)
	}
	if cfg.InvoiceSealKey == "" {
		cfg.Log.Warn("INVOICE_SEAL_KEY not set, invoice QR codes stop verifying after a restart")
	}

	invoiceService := invoicesservice.NewInvoiceService(
		invoicesrepo.NewSettingsRepository(store),
		requestService,
		invoicesvalidator.NewSettingsValidator(cfg.Log),
		render.NewRenderer(cfg.Log),
		seal,
		invoiceSettings,
		middleware.OrganizationID,
		cfg,
	)
	cfg.Log.Info("Services initialized")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmUpLimit)
		defer cancel()
		invoiceService.WarmUp(ctx)
	}()

	health := app.NewHealthHandler(map[string]app.Pinger{
		"mongodb": store,
		"redis":   board,
	}, cfg.Log)

	application.SetApp(health,
		appointmentshandler.NewAppointmentHandler(appointmentService, cfg.Log),
		requestshandler.NewRequestHandler(requestService, cfg.Log),
		recyclebinhandler.NewRecycleBinHandler(binService, cfg.Log),
		invoiceshandler.NewInvoiceHandler(invoiceService, cfg.Log),
	)
	application.Run()
}

// newSink picks the broker that receives domain events. A nil sink keeps
// events in process.
func newSink(cfg *config.Config) events.Sink {
	switch cfg.EventsSink {
	case config.EventsSinkKafka:
		kafkaCfg, err := kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		kafkaCfg.LogConfiguration(cfg.Log.Info)

		producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopic, cfg.KafkaDLQTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		if kafkaCfg.EnableMiddleware {
			producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
			producer.Use(kafkamiddleware.MetricsProducerMiddleware())
		}
		cfg.Log.Info("Publishing events to Kafka", "topic", cfg.KafkaTopic)
		return events.NewKafkaSink(producer, serviceName)

	case config.EventsSinkRabbitMQ:
		sink, err := events.NewAMQPSink(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			cfg.Log.Fatal("Failed to connect to RabbitMQ", "error", err)
		}
		cfg.Log.Info("Publishing events to RabbitMQ", "queue", cfg.RabbitMQQueue)
		return sink

	default:
		cfg.Log.Info("No events sink configured, events stay in process")
		return nil
	}
}
