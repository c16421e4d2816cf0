package zerodha

import (
	"fmt"
	"slices"
	"strings"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// Capabilities are the order constants sent with every placement. All
// fields are required.
type Capabilities struct {
	Exchange  string
	Variety   string
	Product   string
	OrderType string
	Validity  string
}

func DefaultCapabilities() Capabilities {
	return Capabilities{
		Exchange:  "NSE",
		Variety:   kiteconnect.VarietyRegular,
		Product:   kiteconnect.ProductCNC,
		OrderType: kiteconnect.OrderTypeMarket,
		Validity:  kiteconnect.ValidityDay,
	}
}

func (c Capabilities) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"exchange":   c.Exchange,
		"variety":    c.Variety,
		"product":    c.Product,
		"order_type": c.OrderType,
		"validity":   c.Validity,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("broker capabilities missing: %s", strings.Join(missing, ", "))
	}
	return nil
}
