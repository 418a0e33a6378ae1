package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/klausteuber/zcashino-sub002/internal/config"
)

// Commitment is the on-chain record of a seed hash publication.
type Commitment struct {
	TxHash         string    `json:"tx_hash"`
	BlockHeight    int64     `json:"block_height"`
	BlockTimestamp time.Time `json:"block_timestamp"`
}

// VerifyResult reports whether a commitment transaction is confirmed and
// carries the expected hash.
type VerifyResult struct {
	Valid          bool      `json:"valid"`
	BlockTimestamp time.Time `json:"block_timestamp"`
	Error          string    `json:"error,omitempty"`
}

// Client talks JSON-RPC to the commitment sidecar in front of the node.
// The chain is a black box here: publish a hash, check a published hash.
type Client struct {
	url        string
	user       string
	pass       string
	httpClient *http.Client
}

func New(cfg config.Blockchain) *Client {
	return &Client{
		url:  cfg.RPCURL,
		user: cfg.RPCUser,
		pass: cfg.RPCPass,
		httpClient: &http.Client{
			Timeout: cfg.RPCTimeout,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	const op = "blockchain.client.call"

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "1.0",
		ID:      "zcashino",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse

	if err = json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", op, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if err = json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreateCommitment publishes a seed hash in a memo transaction. The change
// output of that transaction is not spendable again for ~75 seconds; the
// pool manager owns that pacing, not this client.
func (c *Client) CreateCommitment(ctx context.Context, seedHash string) (*Commitment, error) {
	const op = "blockchain.client.CreateCommitment"

	var commitment Commitment

	err := c.call(ctx, "commitseedhash", []interface{}{seedHash}, &commitment)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &commitment, nil
}

// VerifyCommitment asks the node whether txHash is confirmed and contains
// expectedHash in its memo.
func (c *Client) VerifyCommitment(ctx context.Context, txHash, expectedHash string) (*VerifyResult, error) {
	const op = "blockchain.client.VerifyCommitment"

	var result VerifyResult

	err := c.call(ctx, "verifycommitment", []interface{}{txHash, expectedHash}, &result)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &result, nil
}
