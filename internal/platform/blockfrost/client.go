package blockfrost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cardabot-backend/internal/cardano"
	"cardabot-backend/internal/common/metrics"
)

const (
	mainnetBase = "https://cardano-mainnet.blockfrost.io/api/v0"
	testnetBase = "https://cardano-preprod.blockfrost.io/api/v0"

	// Blockfrost caps list endpoints at 100 items per page.
	pageSize = 100
)

// Client implements cardano.Ledger against the Blockfrost REST API.
type Client struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
}

var _ cardano.Ledger = (*Client)(nil)

// NewClient initializes a Blockfrost-backed ledger client. baseURL may be
// empty, in which case the public endpoint for the network is used.
func NewClient(baseURL, projectID, network string) *Client {
	if baseURL == "" {
		if network == "mainnet" {
			baseURL = mainnetBase
		} else {
			baseURL = testnetBase
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		projectID:  projectID,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// AccountAddresses resolves all payment addresses under a stake address,
// walking every page in the requested order.
func (c *Client) AccountAddresses(ctx context.Context, stake cardano.StakeAddress, order cardano.Order) ([]cardano.Address, error) {
	timer := prometheus.NewTimer(metrics.LedgerRequestDuration.WithLabelValues("account_addresses"))
	defer timer.ObserveDuration()

	var addresses []cardano.Address
	for page := 1; ; page++ {
		var out []struct {
			Address string `json:"address"`
		}
		path := fmt.Sprintf("/accounts/%s/addresses?order=%s&count=%d&page=%d", stake, order, pageSize, page)
		found, err := c.getJSON(ctx, path, &out)
		if err != nil {
			return nil, err
		}
		if !found {
			// Unknown stake address; nothing to resolve.
			return nil, nil
		}
		for _, item := range out {
			addresses = append(addresses, cardano.Address(item.Address))
		}
		if len(out) < pageSize {
			return addresses, nil
		}
	}
}

// AddressBalance sums the lovelace entries of an address's holdings.
func (c *Client) AddressBalance(ctx context.Context, addr cardano.Address) (uint64, error) {
	timer := prometheus.NewTimer(metrics.LedgerRequestDuration.WithLabelValues("address_balance"))
	defer timer.ObserveDuration()

	var out struct {
		Amount []assetQuantity `json:"amount"`
	}
	found, err := c.getJSON(ctx, "/addresses/"+string(addr), &out)
	if err != nil {
		return 0, err
	}
	if !found {
		// Blockfrost reports never-used addresses as unknown; balance zero.
		return 0, nil
	}
	return sumLovelace(out.Amount)
}

// AddressUTxOs lists the unspent outputs at an address.
func (c *Client) AddressUTxOs(ctx context.Context, addr cardano.Address) ([]cardano.UTxO, error) {
	timer := prometheus.NewTimer(metrics.LedgerRequestDuration.WithLabelValues("address_utxos"))
	defer timer.ObserveDuration()

	var utxos []cardano.UTxO
	for page := 1; ; page++ {
		var out []struct {
			TxHash      string          `json:"tx_hash"`
			OutputIndex uint32          `json:"output_index"`
			Amount      []assetQuantity `json:"amount"`
		}
		path := fmt.Sprintf("/addresses/%s/utxos?count=%d&page=%d", addr, pageSize, page)
		found, err := c.getJSON(ctx, path, &out)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		for _, item := range out {
			amount, err := sumLovelace(item.Amount)
			if err != nil {
				return nil, err
			}
			utxos = append(utxos, cardano.UTxO{
				TxHash:  item.TxHash,
				Index:   item.OutputIndex,
				Address: addr,
				Amount:  amount,
			})
		}
		if len(out) < pageSize {
			return utxos, nil
		}
	}
}

// TransactionMetadata returns the labeled metadata entries of a transaction.
func (c *Client) TransactionMetadata(ctx context.Context, txID string) ([]cardano.TxMetadata, error) {
	timer := prometheus.NewTimer(metrics.LedgerRequestDuration.WithLabelValues("tx_metadata"))
	defer timer.ObserveDuration()

	var out []struct {
		Label        string          `json:"label"`
		JSONMetadata json.RawMessage `json:"json_metadata"`
	}
	found, err := c.getJSON(ctx, "/txs/"+txID+"/metadata", &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	entries := make([]cardano.TxMetadata, 0, len(out))
	for _, item := range out {
		entry := cardano.TxMetadata{Label: item.Label}
		// Metadata payloads are free-form; non-object payloads are kept empty
		// rather than failing the whole scan.
		_ = json.Unmarshal(item.JSONMetadata, &entry.JSON)
		entries = append(entries, entry)
	}
	return entries, nil
}

// SubmitTransaction posts a signed transaction in CBOR form.
func (c *Client) SubmitTransaction(ctx context.Context, txCBOR []byte) (string, error) {
	timer := prometheus.NewTimer(metrics.LedgerRequestDuration.WithLabelValues("submit"))
	defer timer.ObserveDuration()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tx/submit", bytes.NewReader(txCBOR))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/cbor")
	req.Header.Set("project_id", c.projectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit transaction: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read submit response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("blockfrost submit http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// The response body is the JSON-quoted transaction hash.
	var txHash string
	if err := json.Unmarshal(body, &txHash); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return txHash, nil
}

// TransactionExists reports whether a transaction is known on-chain.
func (c *Client) TransactionExists(ctx context.Context, txID string) (bool, error) {
	timer := prometheus.NewTimer(metrics.LedgerRequestDuration.WithLabelValues("tx_lookup"))
	defer timer.ObserveDuration()

	var out json.RawMessage
	return c.getJSON(ctx, "/txs/"+txID, &out)
}

type assetQuantity struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

func sumLovelace(amounts []assetQuantity) (uint64, error) {
	var total uint64
	for _, amount := range amounts {
		if !strings.EqualFold(amount.Unit, "lovelace") {
			continue
		}
		quantity, err := strconv.ParseUint(amount.Quantity, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid lovelace quantity %q: %w", amount.Quantity, err)
		}
		total += quantity
	}
	return total, nil
}

// getJSON performs an authenticated GET and decodes the response. The second
// return value is false when the resource does not exist (HTTP 404).
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("project_id", c.projectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("blockfrost request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("blockfrost http %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode blockfrost response: %w", err)
	}
	return true, nil
}
