package config

import (
	"gopkg.in/yaml.v3"
	"log"
	"os"
	"strconv"
	"time"
)

// Config структура, которая хранит настройки приложения
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	JWT       JWTConfig       `yaml:"jwt"`
	Mail      MailConfig      `yaml:"mail"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Database  DBConfig        `yaml:"database"`
}

// HTTPConfig хранит параметры HTTP-сервера
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// JWTConfig хранит параметры выпуска JWT-токенов
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
	ResetTTL   time.Duration `yaml:"reset_ttl"`
}

// MailConfig хранит параметры отправки почты
type MailConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	From        string `yaml:"from"`
	FrontendURL string `yaml:"frontend_url"`
}

// SchedulerConfig хранит параметры диспетчера напоминаний
type SchedulerConfig struct {
	CronSpec string        `yaml:"cron_spec"`
	Horizon  time.Duration `yaml:"horizon"`
}

// DBConfig хранит параметры для подключения к базе данных
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN генерирует строку подключения для базы данных
func (db *DBConfig) DSN() string {
	return "host=" + db.Host +
		" port=" + strconv.Itoa(db.Port) +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.DBName +
		" sslmode=" + db.SSLMode
}

// PoolDSN генерирует строку подключения в формате URL для pgxpool
func (db *DBConfig) PoolDSN() string {
	return "postgres://" + db.User + ":" + db.Password +
		"@" + db.Host + ":" + strconv.Itoa(db.Port) +
		"/" + db.DBName + "?sslmode=" + db.SSLMode
}

// LoadConfig загружает конфигурацию из файла
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := &Config{}
	decoder := yaml.NewDecoder(file)
	return config, decoder.Decode(config)
}

// DefaultConfig возвращает конфигурацию с параметрами по умолчанию
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Listen: ":8000",
		},
		JWT: JWTConfig{
			Secret:     "",
			AccessTTL:  30 * time.Minute,
			RefreshTTL: 24 * time.Hour,
			ResetTTL:   15 * time.Minute,
		},
		Mail: MailConfig{
			Host:        "localhost",
			Port:        25,
			From:        "noreply@crm.com",
			FrontendURL: "http://localhost:3000",
		},
		Scheduler: SchedulerConfig{
			CronSpec: "* * * * *",
			Horizon:  24 * time.Hour,
		},
		Database: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "crm",
			SSLMode:  "disable",
		},
	}
}

// ParseEnv обновляет конфигурацию из переменных окружения
func (c *Config) ParseEnv() {
	if listen := os.Getenv("HTTP_LISTEN"); listen != "" {
		c.HTTP.Listen = listen
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if ttl := os.Getenv("JWT_ACCESS_TTL"); ttl != "" {
		parsedTTL, err := time.ParseDuration(ttl)
		if err == nil {
			c.JWT.AccessTTL = parsedTTL
		} else {
			log.Printf("Ошибка парсинга JWT_ACCESS_TTL: %v", err)
		}
	}
	if ttl := os.Getenv("JWT_REFRESH_TTL"); ttl != "" {
		parsedTTL, err := time.ParseDuration(ttl)
		if err == nil {
			c.JWT.RefreshTTL = parsedTTL
		} else {
			log.Printf("Ошибка парсинга JWT_REFRESH_TTL: %v", err)
		}
	}

	if host := os.Getenv("MAIL_HOST"); host != "" {
		c.Mail.Host = host
	}
	if port := os.Getenv("MAIL_PORT"); port != "" {
		c.Mail.Port, _ = strconv.Atoi(port)
	}
	if from := os.Getenv("MAIL_FROM"); from != "" {
		c.Mail.From = from
	}
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		c.Mail.FrontendURL = url
	}

	if spec := os.Getenv("SCHEDULER_CRON"); spec != "" {
		c.Scheduler.CronSpec = spec
	}
	if horizon := os.Getenv("SCHEDULER_HORIZON"); horizon != "" {
		parsed, err := time.ParseDuration(horizon)
		if err == nil {
			c.Scheduler.Horizon = parsed
		} else {
			log.Printf("Ошибка парсинга SCHEDULER_HORIZON: %v", err)
		}
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		c.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		c.Database.Port, _ = strconv.Atoi(port)
	}
	if user := os.Getenv("DB_USER"); user != "" {
		c.Database.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		c.Database.Password = password
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		c.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DB_SSLMODE"); sslMode != "" {
		c.Database.SSLMode = sslMode
	}
}
