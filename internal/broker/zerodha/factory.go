package zerodha

import (
	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/store"
)

// New builds the Kite broker from configuration.
func New(cfg *store.Config) (interfaces.Broker, error) {
	return NewZerodha(Params{
		Mode:        cfg.Mode,
		APIKey:      cfg.Kite.APIKey,
		AccessToken: cfg.Kite.AccessToken,
		Capabilities: Capabilities{
			Exchange:  cfg.Orders.Exchange,
			Variety:   cfg.Orders.Variety,
			Product:   cfg.Orders.Product,
			OrderType: cfg.Orders.OrderType,
			Validity:  cfg.Orders.Validity,
		},
	})
}
