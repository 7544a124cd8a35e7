package cardano

import "context"

// UTxO is one unspent transaction output: the fundamental spendable unit.
// Amount is always lovelace.
type UTxO struct {
	TxHash  string
	Index   uint32
	Address Address
	Amount  uint64
}

// TxMetadata is one labeled auxiliary-data entry attached to an on-chain
// transaction, as reported by the query layer.
type TxMetadata struct {
	Label string
	JSON  map[string]interface{}
}

// Order controls the sort direction of paged ledger queries.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Ledger is the chain-query and submission boundary. Implementations make
// network calls: every method may time out, return empty, or fail, and callers
// must not hold shared locks while waiting on one.
type Ledger interface {
	// AccountAddresses resolves the payment addresses controlled by a stake
	// address, in the requested order.
	AccountAddresses(ctx context.Context, stake StakeAddress, order Order) ([]Address, error)

	// AddressBalance returns the total lovelace held by an address.
	AddressBalance(ctx context.Context, addr Address) (uint64, error)

	// AddressUTxOs lists the unspent outputs at an address.
	AddressUTxOs(ctx context.Context, addr Address) ([]UTxO, error)

	// TransactionMetadata returns the auxiliary metadata of a transaction,
	// or an empty slice when it carries none.
	TransactionMetadata(ctx context.Context, txID string) ([]TxMetadata, error)

	// SubmitTransaction posts a signed transaction and returns its id.
	// Submission is not idempotent; callers must not retry blindly.
	SubmitTransaction(ctx context.Context, txCBOR []byte) (string, error)

	// TransactionExists reports whether a transaction is known on-chain.
	TransactionExists(ctx context.Context, txID string) (bool, error)
}
