// Package node is the shell's client for a node's JSON-RPC APIs.
package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	klog "github.com/Klingon-tech/avash/internal/log"
	"github.com/Klingon-tech/avash/internal/rpcclient"
)

// DefaultAssetID is used by send when no asset is given.
const DefaultAssetID = "AVAX"

// Capability invokes one remote method with positional arguments.
type Capability func(ctx context.Context, args []any) (json.RawMessage, error)

// Client wraps the JSON-RPC transport with the node's API layout.
type Client struct {
	rpc     *rpcclient.Client
	retries uint64

	connected atomic.Bool
	mu        sync.RWMutex
	nodeID    string

	newBackOff func() backoff.BackOff
}

// New creates a client that retries Connect up to retries times.
func New(rpc *rpcclient.Client, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		rpc:        rpc,
		retries:    uint64(retries),
		newBackOff: newConnectBackOff,
	}
}

const connectMaxElapsed = 15 * time.Second

func newConnectBackOff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = connectMaxElapsed
	return bo
}

// Endpoint returns the node base URL.
func (c *Client) Endpoint() string {
	return c.rpc.BaseURL()
}

// Connect fetches the node ID, retrying transport failures. A JSON-RPC
// error from the node is not retried.
func (c *Client) Connect(ctx context.Context) error {
	var nodeID string
	op := func() error {
		var res nodeIDResult
		err := c.call(ctx, ContextInfo, "getNodeID", nil, &res)
		var rpcErr *rpcclient.RPCError
		if errors.As(err, &rpcErr) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		nodeID = res.NodeID
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.retries), ctx)
	err := backoff.RetryNotify(op, bo, func(err error, next time.Duration) {
		klog.Node.Warn().Err(err).Dur("retry_in", next).Str("endpoint", c.Endpoint()).Msg("Node unreachable")
	})
	if err != nil {
		c.connected.Store(false)
		return fmt.Errorf("connect to %s: %w", c.Endpoint(), err)
	}

	c.mu.Lock()
	c.nodeID = nodeID
	c.mu.Unlock()
	c.connected.Store(true)

	klog.Node.Info().Str("node_id", nodeID).Str("endpoint", c.Endpoint()).Msg("Connected to node")
	return nil
}

// Connected reports whether the last Connect succeeded.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// NodeID returns the ID learned by the last successful Connect.
func (c *Client) NodeID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodeID
}

// Capability binds (group, method) to a remote call. paramNames name the
// positional args; nil args are left out so the node applies its defaults.
// method may be fully qualified ("avm.getBalance").
func (c *Client) Capability(group, method string, paramNames []string) (Capability, bool) {
	ep, ok := endpoints[group]
	if !ok {
		return nil, false
	}
	full := method
	if !strings.Contains(method, ".") {
		full = ep.namespace + "." + method
	}

	names := append([]string(nil), paramNames...)
	return func(ctx context.Context, args []any) (json.RawMessage, error) {
		params := make(map[string]any, len(names))
		for i, name := range names {
			if i >= len(args) || args[i] == nil {
				continue
			}
			params[name] = encodeArg(args[i])
		}

		var raw json.RawMessage
		if err := c.rpc.Call(ctx, ep.path, full, params, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	}, true
}

// encodeArg converts sanitized values into their wire form.
func encodeArg(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case time.Time:
		return strconv.FormatInt(x.Unix(), 10)
	default:
		return v
	}
}

func (c *Client) call(ctx context.Context, group, method string, params, result any) error {
	ep, ok := endpoints[group]
	if !ok {
		return fmt.Errorf("no endpoint for context %q", group)
	}
	return c.rpc.Call(ctx, ep.path, ep.namespace+"."+method, params, result)
}

// TxStatus returns the X-chain status of a transaction.
func (c *Client) TxStatus(ctx context.Context, txID string) (string, error) {
	var res txStatusResult
	if err := c.call(ctx, ContextAVM, "getTxStatus", txStatusParams{TxID: txID}, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}

// ListUsers returns the keystore usernames on the node.
func (c *Client) ListUsers(ctx context.Context) ([]string, error) {
	var res usersResult
	if err := c.call(ctx, ContextKeystore, "listUsers", nil, &res); err != nil {
		return nil, err
	}
	return res.Users, nil
}

// CreateUser creates a keystore user on the node.
func (c *Client) CreateUser(ctx context.Context, cred Credentials) error {
	var res successResult
	if err := c.call(ctx, ContextKeystore, "createUser", cred, &res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("node refused to create user %s", cred.Username)
	}
	return nil
}

// ListAddresses returns the X-chain addresses controlled by cred.
func (c *Client) ListAddresses(ctx context.Context, cred Credentials) ([]string, error) {
	var res addressesResult
	if err := c.call(ctx, ContextAVM, "listAddresses", cred, &res); err != nil {
		return nil, err
	}
	return res.Addresses, nil
}

// CreateAddress creates a new X-chain address for cred.
func (c *Client) CreateAddress(ctx context.Context, cred Credentials) (string, error) {
	var res addressResult
	if err := c.call(ctx, ContextAVM, "createAddress", cred, &res); err != nil {
		return "", err
	}
	return res.Address, nil
}

// Send submits an X-chain transfer and returns its transaction ID.
func (c *Client) Send(ctx context.Context, cred Credentials, args SendArgs) (string, error) {
	if args.Amount == nil || args.Amount.Sign() <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	asset := args.AssetID
	if asset == "" {
		asset = DefaultAssetID
	}

	var res txIDResult
	err := c.call(ctx, ContextAVM, "send", sendParams{
		Credentials: cred,
		AssetID:     asset,
		Amount:      args.Amount.String(),
		To:          args.To,
		From:        args.From,
	}, &res)
	if err != nil {
		return "", err
	}
	return res.TxID, nil
}

// AddValidator submits a P-chain validator registration.
func (c *Client) AddValidator(ctx context.Context, cred Credentials, args AddValidatorArgs) (string, error) {
	if !args.EndTime.After(args.StartTime) {
		return "", fmt.Errorf("end time must be after start time")
	}
	if args.StakeAmount == nil || args.StakeAmount.Sign() <= 0 {
		return "", fmt.Errorf("stake amount must be positive")
	}

	var res txIDResult
	err := c.call(ctx, ContextPlatform, "addValidator", addValidatorParams{
		Credentials:       cred,
		NodeID:            args.NodeID,
		StartTime:         strconv.FormatInt(args.StartTime.Unix(), 10),
		EndTime:           strconv.FormatInt(args.EndTime.Unix(), 10),
		StakeAmount:       args.StakeAmount.String(),
		RewardAddress:     args.RewardAddress,
		DelegationFeeRate: args.DelegationFeeRate,
	}, &res)
	if err != nil {
		return "", err
	}
	return res.TxID, nil
}
