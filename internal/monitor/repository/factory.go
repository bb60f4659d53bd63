package repository

import (
	"log/slog"

	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/repository/orm"
	sqlrepo "github.com/remote-radar-dev/go-job-radar/internal/monitor/repository/sql"
	"github.com/remote-radar-dev/go-job-radar/pkg/txs"
)

type Factory struct {
	db        *database.PostgresDB
	txManager *txs.TxManager
	config    *config.Config
	logger    *slog.Logger
}

func NewFactory(db *database.PostgresDB, txManager *txs.TxManager, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		db:        db,
		txManager: txManager,
		config:    config,
		logger:    logger,
	}
}

func (f *Factory) CreateWebsiteRepository() (WebsiteRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория площадок")
		return orm.NewWebsiteRepository(f.db, f.txManager), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория площадок")
		return sqlrepo.NewWebsiteRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}

func (f *Factory) CreateMonitorRepository() (MonitorRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория мониторов")
		return orm.NewMonitorRepository(f.db, f.txManager), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория мониторов")
		return sqlrepo.NewMonitorRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}

func (f *Factory) CreateJobRepository() (JobRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория вакансий")
		return orm.NewJobRepository(f.db, f.txManager), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория вакансий")
		return sqlrepo.NewJobRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}

// Журнал изменений, каналы и чаты существуют только в Squirrel-варианте:
// для них второй флавор так и не понадобился.
func (f *Factory) CreateChangeLogRepository() ChangeLogRepository {
	f.logger.Info("Создание ORM (Squirrel) репозитория журнала изменений")
	return orm.NewChangeLogRepository(f.db, f.txManager)
}

func (f *Factory) CreateChannelRepository() ChannelRepository {
	f.logger.Info("Создание ORM (Squirrel) репозитория каналов уведомлений")
	return orm.NewChannelRepository(f.db, f.txManager)
}

func (f *Factory) CreateChatRepository() ChatRepository {
	f.logger.Info("Создание ORM (Squirrel) репозитория чатов")
	return orm.NewChatRepository(f.db, f.txManager)
}
