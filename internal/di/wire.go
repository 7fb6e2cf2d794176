//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"usernotify/internal/config"
	"usernotify/internal/dbmysql"
)

func InitializeApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		ProvideLogger,
		dbmysql.NewMySQL,
		dbmysql.NewStore,
		dbmysql.NewPreferenceStore,
		ProvideRegistry,
		ProvideEngine,
		ProvideRouter,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
