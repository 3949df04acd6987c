package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"google.golang.org/grpc"

	"health-companion-api/internal/api"
	"health-companion-api/internal/archive"
	"health-companion-api/internal/auth"
	"health-companion-api/internal/clock"
	"health-companion-api/internal/config"
	gweb "health-companion-api/internal/grpcweb"
	"health-companion-api/internal/handler"
	"health-companion-api/internal/middleware"
	"health-companion-api/internal/reminder"
	"health-companion-api/internal/store/backend"
	"health-companion-api/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.Default()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	st, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer st.Close()

	iss := auth.NewIssuer(cfg.JWTSecret)
	clk := clock.New()
	opts := []handler.Option{
		handler.WithClock(clk),
		handler.WithLocation(cfg.Location),
		handler.WithLogger(logger),
	}
	if cfg.ExportBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("aws config: %v", err)
		}
		opts = append(opts, handler.WithArchiver(archive.New(archive.NewClient(awsCfg), cfg.ExportBucket)))
		log.Printf("exports archived to s3://%s", cfg.ExportBucket)
	}
	h := handler.New(st, iss, opts...)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Close()
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl, api.MethodRegister, api.MethodLogin),
			middleware.Auth(iss),
		),
	)
	api.RegisterHealthServiceServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	go func() {
		log.Printf("grpc on :%s", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			log.Printf("grpc: %v", err)
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:"+cfg.GRPCPort, logger)
	if err != nil {
		log.Fatalf("bridge: %v", err)
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr: ":" + cfg.WebPort,
		Handler: web.NewRouter(web.Deps{
			Store:   st,
			Issuer:  iss,
			Clock:   clk,
			Loc:     cfg.Location,
			Logger:  logger,
			GRPCWeb: bridge.Handler(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("http on :%s", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http: %v", err)
		}
	}()

	// daily reminder scan
	notifier, closeNotifier, err := reminder.NewNotifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("notifier: %v", err)
	}
	defer closeNotifier()
	ropts := []reminder.Option{
		reminder.WithClock(clk),
		reminder.WithLocation(cfg.Location),
		reminder.WithLogger(logger),
		reminder.WithConcurrency(cfg.ReminderConcurrency),
	}
	sched, err := reminder.NewScheduler(reminder.NewJob(st, notifier, ropts...), cfg.ReminderAt, ropts...)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	go sched.Start(ctx)

	// graceful shutdown
	<-ctx.Done()
	log.Println("shutting down")
	srv.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
