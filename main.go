package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/urfave/cli/v2"

	"github.com/customeros/docingest/config"
	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/internal/database"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/repository"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/internal/utils"
	"github.com/customeros/docingest/server"
	"github.com/customeros/docingest/services"
	"github.com/customeros/docingest/services/vault"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	app := &cli.App{
		Name:  "docingest",
		Usage: "ingest mailbox attachments into the document store",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "include-members", Usage: "also migrate the organization members table"},
				},
				Action: migrate,
			},
			{
				Name:   "worker",
				Usage:  "Start the scheduled ingestion worker and HTTP API",
				Action: worker,
			},
			{
				Name:  "ingest",
				Usage: "Run ingestion once and print the run results as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "mailbox configuration id"},
					&cli.BoolFlag{Name: "all", Usage: "run every enabled mailbox configuration"},
				},
				Action: ingest,
			},
			{
				Name:  "conceal-credential",
				Usage: "Encrypt a mailbox password for storage; reads stdin when --password is omitted",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password"},
				},
				Action: concealCredential,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("docingest: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, fmt.Errorf("config initialization failed: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is empty")
	}
	return cfg, nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	if err := repository.MigrateDB(cfg.DatabaseConfig, db, c.Bool("include-members")); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("Database migration completed successfully")
	return nil
}

func worker(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	log.Println("docingest starting up...")
	srv, err := server.NewServer(c.Context, cfg, db)
	if err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}

	if err := srv.Run(); err != nil {
		return fmt.Errorf("server startup failed: %w", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func ingest(c *cli.Context) error {
	configurationID := c.String("config")
	if configurationID == "" && !c.Bool("all") {
		return cli.Exit("either --config or --all is required", 2)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return fmt.Errorf("could not initialize jaeger tracer: %w", err)
	}
	defer closer.Close()
	opentracing.SetGlobalTracer(tracer)

	db, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	ctx := utils.WithCustomContext(c.Context, &utils.CustomContext{AppSource: config.AppSourceCLI})
	svcs, err := services.InitServices(ctx, cfg, appLogger, repository.InitRepositories(db))
	if err != nil {
		return err
	}
	defer svcs.Close()

	var output any
	if configurationID != "" {
		result, err := svcs.IngestionService.RunForConfiguration(ctx, configurationID)
		if err != nil {
			return err
		}
		output = result
	} else {
		results, err := svcs.IngestionService.RunAllEnabled(ctx)
		if err != nil {
			return err
		}
		output = dto.RunAllResult{Results: results}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func concealCredential(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	password := c.String("password")
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return cli.Exit("password is empty", 2)
	}

	credentials, err := vault.NewVault(vault.Config{
		EncryptionKey: cfg.IngestionConfig.CredentialEncryptionKey,
		Production:    true,
	}, logger.NewNopLogger())
	if err != nil {
		return err
	}

	secret, err := credentials.Conceal(password)
	if err != nil {
		return err
	}
	fmt.Println(secret)
	return nil
}
