package errors

import "errors"

// Application error taxonomy. Callers wrap these with fmt.Errorf("%w: ...")
// and surfaces match them with errors.Is.
var (
	// ErrUnparseable means the input carried no recoverable temporal meaning.
	ErrUnparseable = errors.New("не удалось распознать дату или время")
	// ErrInvalidDate means a date matched syntactically but is calendrically impossible.
	ErrInvalidDate = errors.New("такой даты не существует")
	// ErrPastTime means the resolved moment has already elapsed.
	ErrPastTime = errors.New("указанное время уже прошло")
	// ErrNotFound means the reminder does not exist or is not owned by the caller.
	ErrNotFound = errors.New("напоминание не найдено")
	// ErrUserNotFound means the user record does not exist.
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrVersionConflict means a concurrent mutation won the write race.
	ErrVersionConflict = errors.New("напоминание было изменено параллельно")
	// ErrAlreadyFinalized means a transition was attempted from Done or Cancelled.
	ErrAlreadyFinalized = errors.New("напоминание уже завершено")
	// ErrInvalidTransition means the lifecycle forbids the requested transition.
	ErrInvalidTransition = errors.New("недопустимый переход состояния")
	// ErrNoPendingClarification means a time answer arrived with nothing awaiting one.
	ErrNoPendingClarification = errors.New("нет напоминания, ожидающего уточнения времени")
	// ErrNotifierUnavailable means the delivery channel failed; delivery is retried on the next pass.
	ErrNotifierUnavailable = errors.New("канал доставки недоступен")
	// ErrDatabaseOperation is the generic persistence failure.
	ErrDatabaseOperation = errors.New("ошибка при работе с базой данных")
	// ErrInternalServer is the generic internal failure.
	ErrInternalServer = errors.New("внутренняя ошибка сервера")
)
