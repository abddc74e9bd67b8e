package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vismaygawai/marketplace/internal/market"
	"github.com/vismaygawai/marketplace/pkg/models"
)

// MarketService is the slice of the client core the RPC surface needs.
type MarketService interface {
	Session() models.Session
	Items() []models.Item
	Owned() []models.Item
	Loading() bool
	Notifications() (<-chan market.Notice, func())
	RequestList(ctx context.Context, name, priceText string) error
	RequestPurchase(ctx context.Context, id uint64, priceText string) error
	RequestTransfer(ctx context.Context, id uint64, to string) error
}

// WalletAdmin drives the local wallet provider; account switches feed
// back into the core through identity-change notifications.
type WalletAdmin interface {
	Create(passphrase string) (string, error)
	Import(mnemonic, passphrase string) error
	Unlock(passphrase string) error
	Lock()
	SwitchAccount(address string) error
	Accounts() []string
	Fingerprint() string
}

// itemPayload carries prices as exact strings: raw wei plus the decimal
// display form. The unit conversion happens here and nowhere closer to
// the core.
type itemPayload struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
	Seller       string `json:"seller"`
	Owner        string `json:"owner"`
	Sold         bool   `json:"sold"`
}

func itemPayloads(items []models.Item) []itemPayload {
	out := make([]itemPayload, 0, len(items))
	for _, item := range items {
		out = append(out, itemPayload{
			ID:           item.ID,
			Name:         item.Name,
			Price:        item.PriceString(),
			PriceDisplay: market.FormatAmount(item.Price),
			Seller:       item.Seller,
			Owner:        item.Owner,
			Sold:         item.Sold,
		})
	}
	return out
}

func (s *Server) dispatch(r *http.Request, method string, rawParams json.RawMessage) (any, *rpcError) {
	ctx := r.Context()
	switch method {
	case "session.get":
		return s.service.Session(), nil
	case "catalog.items":
		return map[string]any{"items": itemPayloads(s.service.Items())}, nil
	case "catalog.owned":
		return map[string]any{"items": itemPayloads(s.service.Owned())}, nil
	case "market.loading":
		return map[string]bool{"loading": s.service.Loading()}, nil
	case "notifications.poll":
		var params struct {
			After uint64 `json:"after"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams()
		}
		return map[string]any{"notices": s.notices.since(params.After)}, nil
	case "market.list":
		var params struct {
			Name  string `json:"name"`
			Price string `json:"price"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams()
		}
		if err := s.service.RequestList(ctx, params.Name, params.Price); err != nil {
			return nil, rpcServiceError(-32040, err)
		}
		return map[string]any{"ok": true, "message": "item listed successfully"}, nil
	case "market.purchase":
		var params struct {
			ID    uint64 `json:"id"`
			Price string `json:"price"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams()
		}
		if err := s.service.RequestPurchase(ctx, params.ID, params.Price); err != nil {
			return nil, rpcServiceError(-32041, err)
		}
		return map[string]any{"ok": true, "message": "item purchased successfully"}, nil
	case "market.transfer":
		var params struct {
			ID uint64 `json:"id"`
			To string `json:"to"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams()
		}
		if err := s.service.RequestTransfer(ctx, params.ID, params.To); err != nil {
			return nil, rpcServiceError(-32042, err)
		}
		return map[string]any{"ok": true, "message": "item transferred successfully"}, nil
	case "wallet.create":
		var params struct {
			Passphrase string `json:"passphrase"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams()
		}
		mnemonic, err := s.wallet.Create(params.Passphrase)
		if err != nil {
			return nil, rpcServiceError(-32050, err)
		}
		return map[string]any{"mnemonic": mnemonic, "accounts": s.wallet.Accounts()}, nil
	case "wallet.import":
		var params struct {
			Mnemonic   string `json:"mnemonic"`
			Passphrase string `json:"passphrase"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams()
		}
		if err := s.wallet.Import(params.Mnemonic, params.Passphrase); err != nil {
			return nil, rpcServiceError(-32051, err)
		}
		return map[string]any{"accounts": s.wallet.Accounts()}, nil
	case "wallet.unlock":
		var params struct {
			Passphrase string `json:"passphrase"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams()
		}
		if err := s.wallet.Unlock(params.Passphrase); err != nil {
			return nil, rpcServiceError(-32052, err)
		}
		return map[string]any{"accounts": s.wallet.Accounts()}, nil
	case "wallet.lock":
		s.wallet.Lock()
		return map[string]bool{"locked": true}, nil
	case "wallet.switch":
		var params struct {
			Address string `json:"address"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams()
		}
		if err := s.wallet.SwitchAccount(params.Address); err != nil {
			return nil, rpcServiceError(-32053, err)
		}
		return map[string]any{"accounts": s.wallet.Accounts()}, nil
	case "wallet.accounts":
		return map[string]any{
			"accounts":    s.wallet.Accounts(),
			"fingerprint": s.wallet.Fingerprint(),
		}, nil
	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}

func decodeParams(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
