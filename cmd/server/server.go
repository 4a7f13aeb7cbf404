package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/ashfall-rpg/gm-api/internal/lock"
	"github.com/ashfall-rpg/gm-api/internal/notify"
	combatorch "github.com/ashfall-rpg/gm-api/internal/orchestrators/combat"
	inventoryorch "github.com/ashfall-rpg/gm-api/internal/orchestrators/inventory"
	restorch "github.com/ashfall-rpg/gm-api/internal/orchestrators/rest"
	"github.com/ashfall-rpg/gm-api/internal/pkg/idgen"
	redisclient "github.com/ashfall-rpg/gm-api/internal/redis"
	abilityrepo "github.com/ashfall-rpg/gm-api/internal/repositories/abilities"
	characterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/characters"
	encounterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/encounters"
	inventoryrepo "github.com/ashfall-rpg/gm-api/internal/repositories/inventory"
	itemrepo "github.com/ashfall-rpg/gm-api/internal/repositories/items"
	npcrepo "github.com/ashfall-rpg/gm-api/internal/repositories/npcs"
)

var (
	grpcPort      int
	redisAddress  string
	redisPoolSize int
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server",
	Long:  `Start the GM API gRPC server backed by Redis.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 50051, "gRPC server port")
	serverCmd.Flags().StringVar(&redisAddress, "redis-address", "localhost:6379", "Redis address")
	serverCmd.Flags().IntVar(&redisPoolSize, "redis-pool-size", 10, "Redis connection pool size")
}

// services bundles the wired orchestrators behind the API surface
type services struct {
	combat    *combatorch.Orchestrator
	rest      *restorch.Orchestrator
	inventory *inventoryorch.Orchestrator
}

func buildServices(client redisclient.Client) (*services, error) {
	encounterRepo, err := encounterrepo.NewRedis(&encounterrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create encounter repository: %w", err)
	}
	characterRepo, err := characterrepo.NewRedis(&characterrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create character repository: %w", err)
	}
	npcRepo, err := npcrepo.NewRedis(&npcrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create NPC repository: %w", err)
	}
	itemRepo, err := itemrepo.NewRedis(&itemrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create item repository: %w", err)
	}
	invRepo, err := inventoryrepo.NewRedis(&inventoryrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory repository: %w", err)
	}
	abilityRepo, err := abilityrepo.NewRedis(&abilityrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create ability repository: %w", err)
	}

	locker, err := lock.NewRedis(&lock.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create locker: %w", err)
	}
	bus, err := notify.NewRedis(&notify.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create change feed: %w", err)
	}

	combatService, err := combatorch.New(&combatorch.Config{
		EncounterRepo:          encounterRepo,
		CharacterRepo:          characterRepo,
		NPCRepo:                npcRepo,
		InventoryRepo:          invRepo,
		Locker:                 locker,
		Bus:                    bus,
		EncounterIDGenerator:   idgen.NewPrefixed("enc"),
		ParticipantIDGenerator: idgen.NewPrefixed("part"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create combat orchestrator: %w", err)
	}

	restService, err := restorch.New(&restorch.Config{
		AbilityRepo: abilityRepo,
		Bus:         bus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rest orchestrator: %w", err)
	}

	inventoryService, err := inventoryorch.New(&inventoryorch.Config{
		InventoryRepo:    invRepo,
		ItemRepo:         itemRepo,
		CharacterRepo:    characterRepo,
		AbilityRepo:      abilityRepo,
		HPSyncer:         combatService,
		Bus:              bus,
		RowIDGenerator:   idgen.NewPrefixed("inv"),
		GrantIDGenerator: idgen.NewPrefixed("grant"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory orchestrator: %w", err)
	}

	return &services{
		combat:    combatService,
		rest:      restService,
		inventory: inventoryService,
	}, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	client, err := redisclient.NewClient(redisAddress, &redisclient.Options{
		PoolSize: redisPoolSize,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", redisAddress, err)
	}
	defer func() { _ = client.Close() }()

	svcs, err := buildServices(client)
	if err != nil {
		return err
	}
	// Pending notes flush before the process exits
	defer svcs.combat.Close()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("gRPC server starting",
			"port", grpcPort,
			"redis_address", redisAddress)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gRPC server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			slog.Warn("graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			slog.Info("server stopped gracefully")
		}

		return nil
	case err := <-errChan:
		return err
	}
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	switch level {
	case grpc_logging.LevelDebug:
		slog.DebugContext(ctx, msg, fields...)
	case grpc_logging.LevelWarn:
		slog.WarnContext(ctx, msg, fields...)
	case grpc_logging.LevelError:
		slog.ErrorContext(ctx, msg, fields...)
	default:
		slog.InfoContext(ctx, msg, fields...)
	}
}
