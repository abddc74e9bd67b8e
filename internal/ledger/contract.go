package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vismaygawai/marketplace/pkg/models"
)

// marketplaceABI is the fixed contract interface. The contract is the
// authority on sold/unsold state and on the exact value a purchase
// requires; nothing here second-guesses it.
const marketplaceABI = `[
  {"inputs":[],"name":"itemCount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"uint256","name":"","type":"uint256"}],"name":"items","outputs":[{"internalType":"uint256","name":"id","type":"uint256"},{"internalType":"string","name":"name","type":"string"},{"internalType":"uint256","name":"price","type":"uint256"},{"internalType":"address payable","name":"seller","type":"address"},{"internalType":"address","name":"owner","type":"address"},{"internalType":"bool","name":"isSold","type":"bool"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_owner","type":"address"}],"name":"getItemsByOwner","outputs":[{"internalType":"uint256[]","name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"string","name":"_name","type":"string"},{"internalType":"uint256","name":"_price","type":"uint256"}],"name":"listItem","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"purchaseItem","outputs":[],"stateMutability":"payable","type":"function"},
  {"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"},{"internalType":"address","name":"_to","type":"address"}],"name":"transferItem","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

var errInvalidContractAddress = errors.New("invalid contract address")

// Contract binds the marketplace ABI to a deployed instance.
type Contract struct {
	address common.Address
	chainID *big.Int
	client  *ethclient.Client
	bound   *bind.BoundContract
	signer  Signer
	log     *slog.Logger
}

// Dial connects to the ledger node, discovers the chain ID and binds the
// contract at contractAddr.
func Dial(ctx context.Context, endpoint, contractAddr string, signer Signer, log *slog.Logger) (*Contract, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, errInvalidContractAddress
	}
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial ledger node: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("discover chain id: %w", err)
	}
	return Bind(client, chainID, contractAddr, signer, log)
}

// Bind wraps an existing client connection. Split out from Dial so tests
// and alternative transports can supply their own connection.
func Bind(client *ethclient.Client, chainID *big.Int, contractAddr string, signer Signer, log *slog.Logger) (*Contract, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, errInvalidContractAddress
	}
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}
	address := common.HexToAddress(contractAddr)
	if log == nil {
		log = slog.Default()
	}
	return &Contract{
		address: address,
		chainID: chainID,
		client:  client,
		bound:   bind.NewBoundContract(address, parsed, client, client, client),
		signer:  signer,
		log:     log,
	}, nil
}

func (c *Contract) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Address reports the bound contract address.
func (c *Contract) Address() string { return c.address.Hex() }

// ChainID reports the chain the contract was bound on.
func (c *Contract) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// ItemCount returns the total number of listed items. Item ids occupy
// the range [1, count].
func (c *Contract) ItemCount(ctx context.Context) (uint64, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "itemCount"); err != nil {
		observeCall("itemCount", err)
		return 0, &ReadError{Op: "itemCount", Err: err}
	}
	observeCall("itemCount", nil)
	count, ok := out[0].(*big.Int)
	if !ok || !count.IsUint64() {
		return 0, &ReadError{Op: "itemCount", Err: errors.New("malformed count")}
	}
	return count.Uint64(), nil
}

// Item reads a single item record by id.
func (c *Contract) Item(ctx context.Context, id uint64) (models.Item, error) {
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "items", new(big.Int).SetUint64(id))
	observeCall("items", err)
	if err != nil {
		return models.Item{}, &ReadError{Op: "items", ID: id, Err: err}
	}
	item, err := decodeItem(out)
	if err != nil {
		return models.Item{}, &ReadError{Op: "items", ID: id, Err: err}
	}
	return item, nil
}

// OwnedIDs returns the ids currently owned by owner, in the contract's
// enumeration order.
func (c *Contract) OwnedIDs(ctx context.Context, owner string) ([]uint64, error) {
	if !common.IsHexAddress(owner) {
		return nil, &ReadError{Op: "getItemsByOwner", Err: errors.New("malformed owner address")}
	}
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "getItemsByOwner", common.HexToAddress(owner))
	observeCall("getItemsByOwner", err)
	if err != nil {
		return nil, &ReadError{Op: "getItemsByOwner", Err: err}
	}
	raw, ok := out[0].([]*big.Int)
	if !ok {
		return nil, &ReadError{Op: "getItemsByOwner", Err: errors.New("malformed id list")}
	}
	ids := make([]uint64, 0, len(raw))
	for _, v := range raw {
		if !v.IsUint64() {
			return nil, &ReadError{Op: "getItemsByOwner", Err: errors.New("id out of range")}
		}
		ids = append(ids, v.Uint64())
	}
	return ids, nil
}

// ListItem submits a new listing for name at price wei.
func (c *Contract) ListItem(ctx context.Context, from, name string, price *big.Int) (Handle, error) {
	opts, err := c.transactor(ctx, from, nil)
	if err != nil {
		return nil, &CallError{Op: "listItem", Err: err}
	}
	tx, err := c.bound.Transact(opts, "listItem", name, price)
	observeCall("listItem", err)
	if err != nil {
		return nil, &CallError{Op: "listItem", Err: err}
	}
	c.log.Info("listing submitted", "tx", tx.Hash().Hex(), "name", name)
	return &txHandle{client: c.client, tx: tx}, nil
}

// PurchaseItem submits a purchase of id, attaching price wei as the
// transferred value.
func (c *Contract) PurchaseItem(ctx context.Context, from string, id uint64, price *big.Int) (Handle, error) {
	opts, err := c.transactor(ctx, from, price)
	if err != nil {
		return nil, &CallError{Op: "purchaseItem", Err: err}
	}
	tx, err := c.bound.Transact(opts, "purchaseItem", new(big.Int).SetUint64(id))
	observeCall("purchaseItem", err)
	if err != nil {
		return nil, &CallError{Op: "purchaseItem", Err: err}
	}
	c.log.Info("purchase submitted", "tx", tx.Hash().Hex(), "item", id)
	return &txHandle{client: c.client, tx: tx}, nil
}

// TransferItem submits an ownership transfer of id to the address to.
func (c *Contract) TransferItem(ctx context.Context, from string, id uint64, to string) (Handle, error) {
	if !common.IsHexAddress(to) {
		return nil, &CallError{Op: "transferItem", Err: errors.New("malformed destination address")}
	}
	opts, err := c.transactor(ctx, from, nil)
	if err != nil {
		return nil, &CallError{Op: "transferItem", Err: err}
	}
	tx, err := c.bound.Transact(opts, "transferItem", new(big.Int).SetUint64(id), common.HexToAddress(to))
	observeCall("transferItem", err)
	if err != nil {
		return nil, &CallError{Op: "transferItem", Err: err}
	}
	c.log.Info("transfer submitted", "tx", tx.Hash().Hex(), "item", id, "to", to)
	return &txHandle{client: c.client, tx: tx}, nil
}

func (c *Contract) transactor(ctx context.Context, from string, value *big.Int) (*bind.TransactOpts, error) {
	if c.signer == nil {
		return nil, errors.New("no signer configured")
	}
	opts, err := c.signer.TransactorFor(from, c.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	if value != nil {
		opts.Value = new(big.Int).Set(value)
	}
	return opts, nil
}

func decodeItem(out []interface{}) (models.Item, error) {
	if len(out) != 6 {
		return models.Item{}, fmt.Errorf("unexpected item tuple size %d", len(out))
	}
	id, ok0 := out[0].(*big.Int)
	name, ok1 := out[1].(string)
	price, ok2 := out[2].(*big.Int)
	seller, ok3 := out[3].(common.Address)
	owner, ok4 := out[4].(common.Address)
	sold, ok5 := out[5].(bool)
	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return models.Item{}, errors.New("malformed item tuple")
	}
	if !id.IsUint64() {
		return models.Item{}, errors.New("item id out of range")
	}
	return models.Item{
		ID:     id.Uint64(),
		Name:   name,
		Price:  new(big.Int).Set(price),
		Seller: seller.Hex(),
		Owner:  owner.Hex(),
		Sold:   sold,
	}, nil
}
