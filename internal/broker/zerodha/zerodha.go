package zerodha

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/types"

	"github.com/google/uuid"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// kiteAPI is the subset of *kiteconnect.Client the adapter calls.
type kiteAPI interface {
	GetQuote(instruments ...string) (kiteconnect.Quote, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
	PlaceOrder(variety string, orderParams kiteconnect.OrderParams) (kiteconnect.OrderResponse, error)
	GetUserMargins() (kiteconnect.AllMargins, error)
	GetHoldings() (kiteconnect.Holdings, error)
}

type Params struct {
	Mode         string
	APIKey       string
	AccessToken  string
	Capabilities Capabilities
}

type Zerodha struct {
	p           Params
	kc          kiteAPI
	instruments *instrumentMapper
}

var _ interfaces.Broker = (*Zerodha)(nil)

// NewZerodha validates p and builds a Kite client. Market data always
// needs credentials; DRY_RUN only simulates order placement.
func NewZerodha(p Params) (*Zerodha, error) {
	if err := p.Capabilities.Validate(); err != nil {
		return nil, err
	}
	if p.APIKey == "" || p.AccessToken == "" {
		return nil, errors.New("missing KITE_API_KEY/KITE_ACCESS_TOKEN")
	}

	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return newWithClient(p, kc), nil
}

func newWithClient(p Params, kc kiteAPI) *Zerodha {
	return &Zerodha{p: p, kc: kc, instruments: newInstrumentMapper()}
}

func (z *Zerodha) instrument(symbol string) string {
	return z.p.Capabilities.Exchange + ":" + symbol
}

func (z *Zerodha) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	key := z.instrument(symbol)
	all, err := z.kc.GetQuote(key)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", key, err)
	}
	data, ok := all[key]
	if !ok {
		return nil, fmt.Errorf("quote %s: missing from response", key)
	}
	z.instruments.addMapping(symbol, data.InstrumentToken)

	m, err := toMap(data)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", key, err)
	}
	return types.Quote(m), nil
}

func (z *Zerodha) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error) {
	token, ok := z.instruments.getToken(symbol)
	if !ok {
		// The token is learned from the quote payload.
		if _, err := z.Quote(ctx, symbol); err != nil {
			return nil, err
		}
		if token, ok = z.instruments.getToken(symbol); !ok {
			return nil, fmt.Errorf("no instrument token for %s", symbol)
		}
	}

	hist, err := z.kc.GetHistoricalData(token, "day", from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("daily bars %s: %w", symbol, err)
	}
	out := make([]types.Candle, 0, len(hist))
	for _, h := range hist {
		out = append(out, types.Candle{
			Ts:    h.Date.Unix(),
			Open:  h.Open,
			High:  h.High,
			Low:   h.Low,
			Close: h.Close,
			Vol:   float64(h.Volume),
		})
	}
	return out, nil
}

func (z *Zerodha) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if req.Qty <= 0 {
		return types.OrderResp{}, fmt.Errorf("invalid quantity %d", req.Qty)
	}

	if z.p.Mode == "DRY_RUN" {
		logger.Debug(ctx, "Simulating order", "symbol", req.Symbol, "side", req.Side, "qty", req.Qty)
		return types.OrderResp{
			OrderID: "SIM-" + uuid.NewString(),
			Status:  "SIMULATED",
			Message: "dry-run",
		}, nil
	}

	caps := z.p.Capabilities
	params := kiteconnect.OrderParams{
		Exchange:        caps.Exchange,
		Tradingsymbol:   req.Symbol,
		Validity:        caps.Validity,
		Product:         caps.Product,
		OrderType:       caps.OrderType,
		TransactionType: transactionType(req.Side),
		Quantity:        req.Qty,
		Tag:             req.Tag,
	}
	resp, err := z.kc.PlaceOrder(caps.Variety, params)
	if err != nil {
		return types.OrderResp{}, err
	}
	return types.OrderResp{OrderID: resp.OrderID, Status: "PLACED", Message: "ok"}, nil
}

func transactionType(s types.Side) string {
	if s == types.SideSell {
		return kiteconnect.TransactionTypeSell
	}
	return kiteconnect.TransactionTypeBuy
}

func (z *Zerodha) AvailableCash(ctx context.Context) (float64, error) {
	margins, err := z.kc.GetUserMargins()
	if err != nil {
		return 0, fmt.Errorf("margins: %w", err)
	}
	m, err := toMap(margins)
	if err != nil {
		return 0, fmt.Errorf("margins: %w", err)
	}
	cash, err := cashFromMargins(m)
	if err != nil {
		return 0, err
	}
	f, _ := cash.Float64()
	return f, nil
}

func (z *Zerodha) Holdings(ctx context.Context) ([]types.Holding, error) {
	hs, err := z.kc.GetHoldings()
	if err != nil {
		return nil, fmt.Errorf("holdings: %w", err)
	}
	out := make([]types.Holding, 0, len(hs))
	for _, h := range hs {
		out = append(out, types.Holding{
			Symbol:       h.Tradingsymbol,
			Qty:          h.Quantity,
			AveragePrice: h.AveragePrice,
		})
	}
	return out, nil
}
