package ledger

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

func TestMarketplaceABIParses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	if err != nil {
		t.Fatalf("abi does not parse: %v", err)
	}
	for _, name := range []string{"itemCount", "items", "getItemsByOwner", "listItem", "purchaseItem", "transferItem"} {
		if _, ok := parsed.Methods[name]; !ok {
			t.Fatalf("abi is missing method %q", name)
		}
	}
	if got := parsed.Methods["purchaseItem"].StateMutability; got != "payable" {
		t.Fatalf("purchaseItem mutability is %q, want payable", got)
	}
	if got := parsed.Methods["listItem"].StateMutability; got == "payable" {
		t.Fatalf("listItem is payable")
	}
}

func TestBindRejectsMalformedAddress(t *testing.T) {
	for _, addr := range []string{"", "0x123", "not-an-address"} {
		if _, err := Bind(nil, big.NewInt(1), addr, nil, nil); !errors.Is(err, errInvalidContractAddress) {
			t.Fatalf("Bind(%q) = %v, want errInvalidContractAddress", addr, err)
		}
	}
}

func TestDecodeItem(t *testing.T) {
	seller := common.HexToAddress("0x1111111111111111111111111111111111111111")
	owner := common.HexToAddress("0x2222222222222222222222222222222222222222")
	item, err := decodeItem([]interface{}{
		big.NewInt(7), "lamp", big.NewInt(1500), seller, owner, true,
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if item.ID != 7 || item.Name != "lamp" || item.Price.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Seller != seller.Hex() || item.Owner != owner.Hex() || !item.Sold {
		t.Fatalf("unexpected item addresses: %+v", item)
	}
}

func TestDecodeItemMalformedTuple(t *testing.T) {
	if _, err := decodeItem([]interface{}{big.NewInt(1)}); err == nil {
		t.Fatalf("short tuple decoded")
	}
	if _, err := decodeItem([]interface{}{
		"1", "lamp", big.NewInt(1), common.Address{}, common.Address{}, false,
	}); err == nil {
		t.Fatalf("mistyped tuple decoded")
	}
}

func TestErrorChainsUnwrap(t *testing.T) {
	cause := errors.New("connection reset")

	read := &ReadError{Op: "items", ID: 4, Err: cause}
	if !errors.Is(read, cause) {
		t.Fatalf("ReadError does not unwrap")
	}
	if msg := read.Error(); !strings.Contains(msg, "items") {
		t.Fatalf("ReadError message missing op: %q", msg)
	}

	call := &CallError{Op: "listItem", Err: cause}
	if !errors.Is(call, cause) {
		t.Fatalf("CallError does not unwrap")
	}

	confirm := &ConfirmError{Tx: "0xabc", Err: cause}
	if !errors.Is(confirm, cause) {
		t.Fatalf("ConfirmError does not unwrap")
	}
}
