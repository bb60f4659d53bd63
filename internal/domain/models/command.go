package models

type CommandType string

const (
	CommandStart       CommandType = "/start"
	CommandHelp        CommandType = "/help"
	CommandSubscribe   CommandType = "/subscribe"
	CommandUnsubscribe CommandType = "/unsubscribe"
	CommandList        CommandType = "/list"
	CommandJobs        CommandType = "/jobs"
	CommandCheck       CommandType = "/check"
	CommandMode        CommandType = "/mode"
	CommandTime        CommandType = "/time"
	CommandUnknown     CommandType = "unknown"
)

type Command struct {
	Type     CommandType
	ChatID   int64
	UserID   int64
	Text     string
	Username string
}
