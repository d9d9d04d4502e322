package model

import "errors"

// Типизированные ошибки ядра. Сервисы оборачивают их через %w,
// обработчики сопоставляют с HTTP-статусом через errors.Is.
var (
	// ErrNotFound : сущность отсутствует или не принадлежит вызывающему
	ErrNotFound = errors.New("не найдено")

	ErrDuplicateSiblingName = errors.New("папка с таким именем уже существует")
	ErrForbiddenTarget      = errors.New("недопустимая целевая папка")
	ErrQuotaExceeded        = errors.New("превышена квота хранилища")
	ErrUnreadableContent    = errors.New("содержимое файла недоступно")
	ErrIntegrityViolation   = errors.New("нарушение ограничения уникальности")
	ErrInvalidArgument      = errors.New("некорректные параметры")

	// ErrContentNotFound : в хранилище нет байтов по указанной ссылке
	ErrContentNotFound = errors.New("содержимое не найдено в хранилище")

	// ErrCannotDownload : общий ответ анонимному клиенту, конкретная причина ниже
	ErrCannotDownload = errors.New("ссылка недоступна для скачивания")
	ErrLinkExpired    = &linkError{reason: "срок действия ссылки истёк"}
	ErrLinkExhausted  = &linkError{reason: "достигнут лимит скачиваний"}
	ErrLinkInactive   = &linkError{reason: "ссылка отключена"}
)

type linkError struct {
	reason string
}

func (e *linkError) Error() string { return e.reason }

func (e *linkError) Unwrap() error { return ErrCannotDownload }
