package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Vovarama1992/dream_interpreter/internal/storage"
)

const maxNameLen = 100

type service struct {
	db    *sql.DB
	infra Infra
}

func NewService(db *sql.DB, infra Infra) Service {
	return &service{db: db, infra: infra}
}

// LoginOrCreate — вход с сайта: ищем по имени и дате рождения, иначе создаём
func (s *service) LoginOrCreate(ctx context.Context, name string, dob time.Time) (*User, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if err := ValidateDOB(dob); err != nil {
		return nil, err
	}

	u, err := s.infra.FindByNameDOB(ctx, name, dob)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	u, err = s.infra.Create(ctx, &User{FirstName: name, DOB: dob})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, id int64) (*User, error) {
	return s.infra.Get(ctx, id)
}

func (s *service) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	return s.infra.GetByTelegramID(ctx, telegramID)
}

// RegisterTelegram — проверка телефона и вставка в одной транзакции
func (s *service) RegisterTelegram(ctx context.Context, reg Registration) (*User, error) {
	name, err := NormalizeName(reg.FirstName)
	if err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(reg.Phone)
	if err != nil {
		return nil, err
	}
	if err := ValidateDOB(reg.DOB); err != nil {
		return nil, err
	}

	var created *User
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		taken, err := s.infra.PhoneExistsTx(ctx, tx, phone)
		if err != nil {
			return err
		}
		if taken {
			return ErrPhoneTaken
		}

		tgID := reg.TelegramID
		created, err = s.infra.CreateTx(ctx, tx, &User{
			FirstName:  name,
			DOB:        reg.DOB,
			Phone:      &phone,
			TelegramID: &tgID,
		})
		return err
	})
	if err != nil {
		// гонка двух регистраций на один номер
		if storage.IsUniqueViolation(err) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	return created, nil
}

func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return "", ErrInvalidName
	}
	return name, nil
}

// NormalizePhone — 5..20 символов: цифры, пробелы, +()-
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < 5 || len(phone) > 20 {
		return "", ErrInvalidPhone
	}
	digits := 0
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == ' ' || r == '(' || r == ')' || r == '-':
		default:
			return "", ErrInvalidPhone
		}
	}
	if digits < 5 {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// ValidateDOB — дата задана и не в будущем
func ValidateDOB(dob time.Time) error {
	if dob.IsZero() || dob.After(time.Now()) {
		return ErrInvalidDOB
	}
	return nil
}
