package db

import (
	"errors"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"crmBackend/src/db/gorm_models"
)

// InitGormDatabase открывает подключение к базе данных через GORM
func InitGormDatabase(dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := SetupRelations(gormDB); err != nil {
		return nil, err
	}

	log.Println("GORM подключен к базе данных!")
	return gormDB, nil
}

// SetupRelations регистрирует явную связку участников события,
// чтобы many2many работал через нашу таблицу
func SetupRelations(gormDB *gorm.DB) error {
	return gormDB.SetupJoinTable(&gorm_models.CalendarEvent{}, "Attendees", &gorm_models.EventAttendee{})
}

// IsDuplicate сообщает, вызвана ли ошибка нарушением уникального индекса.
// Помимо переведённой GORM ошибки распознаёт сырые ошибки драйверов.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
