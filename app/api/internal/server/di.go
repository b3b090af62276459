package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/product_radar/app/api/internal/biz"
	"github.com/iWorld-y/product_radar/app/api/internal/data"
	"github.com/iWorld-y/product_radar/app/api/internal/service"
)

// ProviderSet 是商品创意服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Generator providers
	NewGeneratorConfig,
	NewIdeaEngine,
	NewNotifier,
	NewCatalog,
	NewStorefront,

	// Data providers
	data.NewData,
	data.NewIdeaRepo,

	// UseCase providers
	biz.NewIdeaUseCase,

	// Service providers
	service.NewIdeaService,
)
