package telegram

import (
	"strings"
	"time"

	"github.com/Vovarama1992/dream_interpreter/internal/users"
)

// State — шаг диалога регистрации
type State int

const (
	StateIdle State = iota
	StateAwaitFirstName
	StateAwaitDOB
	StateAwaitPhone
)

func (s State) String() string {
	switch s {
	case StateAwaitFirstName:
		return "await_first_name"
	case StateAwaitDOB:
		return "await_dob"
	case StateAwaitPhone:
		return "await_phone"
	default:
		return "idle"
	}
}

const dobLayout = "02.01.2006"

const (
	msgAskFirstName = "Добро пожаловать в ИИ Сонник! Давайте познакомимся. Как вас зовут? (только имя)"
	msgBadFirstName = "Пожалуйста, напишите только имя, не длиннее 100 символов."
	msgAskDOB       = "Отлично! Теперь введите вашу дату рождения в формате ДД.ММ.ГГГГ (например, 25.08.1995)"
	msgBadDOB       = "Неверный формат даты. Пожалуйста, введите в формате ДД.ММ.ГГГГ"
	msgAskPhone     = "Спасибо! И последний шаг: ваш номер телефона. Я буду использовать его для входа на сайте."
	msgBadPhone     = "Не похоже на номер телефона. Отправьте номер цифрами или нажмите кнопку ниже."
	msgPhoneTaken   = "Пользователь с таким номером телефона уже зарегистрирован. Попробуйте другой номер или отправьте /start, чтобы начать заново."
)

// Session — данные, собранные за время диалога
type Session struct {
	State     State
	FirstName string
	DOB       time.Time
	Phone     string
}

func Begin() Session {
	return Session{State: StateAwaitFirstName}
}

// Advance — один шаг диалога. complete=true, когда собраны все данные
// и можно создавать пользователя; сама сессия при этом остаётся в AwaitPhone.
func (s Session) Advance(input string) (next Session, reply string, complete bool) {
	input = strings.TrimSpace(input)

	switch s.State {
	case StateAwaitFirstName:
		name, err := users.NormalizeName(input)
		if err != nil {
			return s, msgBadFirstName, false
		}
		s.FirstName = name
		s.State = StateAwaitDOB
		return s, msgAskDOB, false

	case StateAwaitDOB:
		dob, err := time.Parse(dobLayout, input)
		if err != nil || users.ValidateDOB(dob) != nil {
			return s, msgBadDOB, false
		}
		s.DOB = dob
		s.State = StateAwaitPhone
		return s, msgAskPhone, false

	case StateAwaitPhone:
		phone, err := users.NormalizePhone(input)
		if err != nil {
			return s, msgBadPhone, false
		}
		s.Phone = phone
		return s, "", true
	}

	return s, "", false
}

func (s Session) Registration(telegramID int64) users.Registration {
	return users.Registration{
		FirstName:  s.FirstName,
		DOB:        s.DOB,
		Phone:      s.Phone,
		TelegramID: telegramID,
	}
}
