package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"crmBackend/src/auth"
	"crmBackend/src/calendar"
	"crmBackend/src/config"
	"crmBackend/src/db"
	"crmBackend/src/db/migrations"
	"crmBackend/src/httpapi"
	"crmBackend/src/mail"
	"crmBackend/src/scheduler"

	_ "crmBackend/migrations"
)

func main() {
	// .env не обязателен, переменные окружения читаются в любом случае
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "crmbackend",
		Usage: "CRM backend: аутентификация и календарь",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "путь к yaml-конфигурации",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "применить миграции и запустить HTTP-сервер",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "только применить миграции",
				Action: runMigrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) *config.Config {
	conf := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			log.Fatalf("Ошибка загрузки конфигурации: %v", err)
		}
		conf = loaded
	}
	conf.ParseEnv()
	return conf
}

func migrate(ctx context.Context, conf *config.Config) {
	pool, err := pgxpool.New(ctx, conf.Database.PoolDSN())
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := migrations.MigrateDatabase(pool); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(c *cli.Context) error {
	conf := loadConfig(c)
	migrate(c.Context, conf)
	return nil
}

func runServe(c *cli.Context) error {
	conf := loadConfig(c)
	migrate(c.Context, conf)

	gormDB, err := db.InitGormDatabase(conf.Database.DSN())
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных через GORM: %v", err)
	}

	mailer := mail.NewSMTPMailer(&conf.Mail)
	tokens := auth.NewTokenManager(&conf.JWT)
	authProvider := auth.NewProvider(gormDB, tokens, mailer, conf)
	eventProvider := calendar.NewEventProvider(gormDB)
	recurrenceProvider := calendar.NewRecurrenceProvider(gormDB)
	reminderProvider := scheduler.NewReminderProvider(gormDB)

	dispatcher := scheduler.NewDispatcher(reminderProvider, mailer, conf.Scheduler.CronSpec)
	if err := dispatcher.Start(); err != nil {
		log.Fatalf("Ошибка запуска диспетчера напоминаний: %v", err)
	}
	defer dispatcher.Stop()

	server := httpapi.NewServer(authProvider, tokens, eventProvider, recurrenceProvider, reminderProvider)

	log.Printf("HTTP-сервер слушает %s", conf.HTTP.Listen)
	return http.ListenAndServe(conf.HTTP.Listen, server.Handler())
}
