package errors

import (
	"fmt"
)

type ErrMonitorNotFound struct {
	ID int64
}

func (e *ErrMonitorNotFound) Error() string {
	return fmt.Sprintf("монитор не найден: %d", e.ID)
}

func (e *ErrMonitorNotFound) Is(target error) bool {
	_, ok := target.(*ErrMonitorNotFound)
	return ok
}

type ErrMonitorAlreadyRunning struct {
	ID int64
}

func (e *ErrMonitorAlreadyRunning) Error() string {
	return fmt.Sprintf("монитор с ID %d уже запущен", e.ID)
}

func (e *ErrMonitorAlreadyRunning) Is(target error) bool {
	_, ok := target.(*ErrMonitorAlreadyRunning)
	return ok
}

type ErrWebsiteNotFound struct {
	ID int64
}

func (e *ErrWebsiteNotFound) Error() string {
	return fmt.Sprintf("площадка не найдена: %d", e.ID)
}

func (e *ErrWebsiteNotFound) Is(target error) bool {
	_, ok := target.(*ErrWebsiteNotFound)
	return ok
}

type ErrWebsiteAlreadyExists struct {
	URL string
}

func (e *ErrWebsiteAlreadyExists) Error() string {
	return "площадка уже зарегистрирована: " + e.URL
}

func (e *ErrWebsiteAlreadyExists) Is(target error) bool {
	_, ok := target.(*ErrWebsiteAlreadyExists)
	return ok
}

type ErrJobNotFound struct {
	URL string
}

func (e *ErrJobNotFound) Error() string {
	return "вакансия не найдена: " + e.URL
}

func (e *ErrJobNotFound) Is(target error) bool {
	_, ok := target.(*ErrJobNotFound)
	return ok
}

type ErrChannelNotFound struct {
	ID int64
}

func (e *ErrChannelNotFound) Error() string {
	return fmt.Sprintf("канал уведомлений не найден: %d", e.ID)
}

type ErrUnsupportedSiteType struct {
	Type string
}

func (e *ErrUnsupportedSiteType) Error() string {
	return "неподдерживаемый тип площадки: " + e.Type
}

func (e *ErrUnsupportedSiteType) Is(target error) bool {
	_, ok := target.(*ErrUnsupportedSiteType)
	return ok
}

type ErrUnknownChannelType struct {
	Type string
}

func (e *ErrUnknownChannelType) Error() string {
	return "неизвестный тип канала уведомлений: " + e.Type
}

func (e *ErrUnknownChannelType) Is(target error) bool {
	_, ok := target.(*ErrUnknownChannelType)
	return ok
}

type ErrChatNotFound struct {
	ChatID int64
}

func (e *ErrChatNotFound) Error() string {
	return fmt.Sprintf("чат не найден: %d", e.ChatID)
}

type ErrChatAlreadyExists struct {
	ChatID int64
}

func (e *ErrChatAlreadyExists) Error() string {
	return fmt.Sprintf("чат с ID %d уже существует", e.ChatID)
}

type ErrChatStateNotFound struct {
	ChatID int64
}

func (e *ErrChatStateNotFound) Error() string {
	return fmt.Sprintf("состояние чата не найдено: %d", e.ChatID)
}

func (e *ErrChatStateNotFound) Is(target error) bool {
	_, ok := target.(*ErrChatStateNotFound)
	return ok
}

type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string {
	return "неизвестная команда: " + e.Command
}

type ErrInvalidURL struct {
	URL string
}

func (e *ErrInvalidURL) Error() string {
	return "неверный формат URL: " + e.URL
}

type ErrInvalidValue struct {
	FieldName string
	Value     string
}

func (e *ErrInvalidValue) Error() string {
	return fmt.Sprintf("некорректное значение '%s' для поля '%s'", e.Value, e.FieldName)
}

func (e *ErrInvalidValue) Is(target error) bool {
	_, ok := target.(*ErrInvalidValue)
	return ok
}

type ErrMissingRequiredField struct {
	FieldName string
}

func (e *ErrMissingRequiredField) Error() string {
	return fmt.Sprintf("отсутствует обязательное поле: %s", e.FieldName)
}

type ErrUnknownDBAccessType struct {
	AccessType string
}

func (e *ErrUnknownDBAccessType) Error() string {
	return fmt.Sprintf("неизвестный тип доступа к базе данных: %s", e.AccessType)
}

type ErrUnknownNotificationMode struct {
	Mode string
}

func (e *ErrUnknownNotificationMode) Error() string {
	return fmt.Sprintf("неизвестный режим уведомлений: %s", e.Mode)
}

func (e *ErrUnknownNotificationMode) Is(target error) bool {
	_, ok := target.(*ErrUnknownNotificationMode)
	return ok
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrSQLScan struct {
	Entity string
	Cause  error
}

func (e *ErrSQLScan) Error() string {
	return fmt.Sprintf("ошибка при сканировании %s: %v", e.Entity, e.Cause)
}

func (e *ErrSQLScan) Unwrap() error {
	return e.Cause
}

type ErrCrawlFailed struct {
	WebsiteURL string
	Cause      error
}

func (e *ErrCrawlFailed) Error() string {
	return fmt.Sprintf("ошибка при обходе площадки %s: %v", e.WebsiteURL, e.Cause)
}

func (e *ErrCrawlFailed) Unwrap() error {
	return e.Cause
}

type ErrParseFailed struct {
	WebsiteURL string
	Cause      error
}

func (e *ErrParseFailed) Error() string {
	return fmt.Sprintf("ошибка при разборе содержимого площадки %s: %v", e.WebsiteURL, e.Cause)
}

func (e *ErrParseFailed) Unwrap() error {
	return e.Cause
}

type ErrMissingURLInUpdate struct{}

func (e *ErrMissingURLInUpdate) Error() string {
	return "отсутствует обязательное поле URL в сообщении JobUpdate"
}

func (e *ErrMissingURLInUpdate) Is(target error) bool {
	_, ok := target.(*ErrMissingURLInUpdate)
	return ok
}

type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
