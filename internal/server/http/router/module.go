package router

import (
	"go.uber.org/fx"

	"github.com/okateva/resto/internal/app"
	"github.com/okateva/resto/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(func(facade *app.RestaurantFacade) handlers.RestaurantFacade { return facade }),
	fx.Provide(Setup),
)
