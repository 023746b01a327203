package payment

import (
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/okateva/resto/internal/config"
)

// Module exposes the payment adapter registry to the fx graph.
var Module = fx.Provide(newRegistry)

type registryParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newRegistry(p registryParams) (Registry, error) {
	timeout := p.Config.ProviderTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	card, err := NewCardAdapter(p.Config.Card.APIKey, p.Config.Card.BaseURL, timeout, p.Logger)
	if err != nil {
		return nil, err
	}

	wallet, err := NewWalletAdapter(p.Config.Wallet.ClientID, p.Config.Wallet.Secret, p.Config.Wallet.BaseURL, timeout, p.Logger)
	if err != nil {
		return nil, err
	}

	return Registry{
		ProviderCard:   card,
		ProviderWallet: wallet,
		ProviderCash:   NewCashAdapter(),
	}, nil
}
