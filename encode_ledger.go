package networth

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// amountCmd is a specialized struct to read a ledger amount in two fields.
type amountCmd struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountCmd) Money() Money {
	return M(a.Amount, a.Currency)
}

// tradeCmd is a specialized struct for decoding the trade fields of buy and
// sell lines.
type tradeCmd struct {
	Quantity  Quantity        `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Fees      decimal.Decimal `json:"fees"`
	Currency  string          `json:"currency"`
}

func (a tradeCmd) quantity() Quantity { return a.Quantity }
func (a tradeCmd) unitPrice() Money   { return M(a.UnitPrice, a.Currency) }
func (a tradeCmd) fees() Money        { return M(a.Fees, a.Currency) }

// DecodeLedger decodes transactions from a stream of JSONL data from an
// io.Reader, decodes each line into the appropriate transaction struct, and
// returns a sorted Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify command in line %q: %w", string(lineBytes), err)
		}

		var decodedTx Transaction

		switch identifier.Command {
		case CmdBuy:
			var tx Buy
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("could not decode buy line %q: %w", string(lineBytes), err)
			}
			decodedTx = tx
		case CmdSell:
			var tx Sell
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("could not decode sell line %q: %w", string(lineBytes), err)
			}
			decodedTx = tx
		case CmdDeposit:
			var tx Deposit
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("could not decode deposit line %q: %w", string(lineBytes), err)
			}
			decodedTx = tx
		case CmdWithdraw:
			var tx Withdraw
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("could not decode withdraw line %q: %w", string(lineBytes), err)
			}
			decodedTx = tx
		default:
			return nil, fmt.Errorf("unknown command %q in line %q", identifier.Command, string(lineBytes))
		}

		ledger.Append(decodedTx)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	return ledger, nil
}

// EncodeLedger writes the ledger's transactions as JSONL, one transaction per
// line, in chronological order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for _, tx := range l.Transactions() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// EncodeTransaction writes a single transaction as one JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	line, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("could not encode %s transaction on %s: %w", tx.What(), tx.When(), err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
		return err
	}
	return nil
}
