package networth

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandType is a typed string for identifying transaction commands.
type CommandType string

// Command types used for identifying transactions.
const (
	CmdBuy      CommandType = "buy"
	CmdSell     CommandType = "sell"
	CmdDeposit  CommandType = "deposit"
	CmdWithdraw CommandType = "withdraw"
)

// Transaction defines the common interface for all types of financial
// transactions that can be recorded in the ledger.
//
// Transactions are immutable once loaded: validation returns a possibly
// fixed-up copy, it never modifies the ledger's entries in place.
type Transaction interface {
	What() CommandType // What returns the command type of the transaction (e.g., "buy", "sell").
	When() Date        // When returns the date on which the transaction occurred.
	Equal(Transaction) bool
	Validate(ledger *Ledger) (Transaction, error)
}

type baseCmd struct {
	Command CommandType `json:"command"`        // Command specifies the type of transaction (e.g., "buy", "sell").
	Date    Date        `json:"date"`           // Date is the date when the transaction took place.
	Memo    string      `json:"memo,omitempty"` // Memo provides an optional rationale or note for the transaction.
}

// What returns the command name for the transaction, which is used to identify the type of transaction.
func (t baseCmd) What() CommandType { return t.Command }

// When returns the date of the transaction.
func (t baseCmd) When() Date { return t.Date }

// Rationale returns the memo associated with the transaction.
func (t baseCmd) Rationale() string { return t.Memo }

// MarshalJSON implements the json.Marshaler interface for baseCmd.
func (t baseCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Append("date", t.Date)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// Validate checks the base command fields. It sets the date to today if it's zero.
// It's meant to be embedded in other transaction validation methods.
func (t *baseCmd) Validate() {
	if t.Date == (Date{}) {
		t.Date = Today()
	}
}

// instrCmd is a component for instrument-based transactions (buy, sell).
type instrCmd struct {
	baseCmd
	Instrument string `json:"instrument"` // Instrument is the ticker symbol of the instrument involved.
}

// Validate checks the instrument command fields.
func (t *instrCmd) Validate() error {
	t.baseCmd.Validate()
	if t.Instrument == "" {
		return errors.New("instrument ticker is missing")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for instrCmd.
func (t instrCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("instrument", t.Instrument)
	return w.MarshalJSON()
}

// Buy represents a transaction where a quantity of an instrument is purchased
// at a unit price, plus transaction fees.
type Buy struct {
	instrCmd
	Quantity  Quantity // Quantity is the number of shares or units bought, always positive.
	UnitPrice Money    // UnitPrice is the price paid per unit.
	Fees      Money    // Fees is the total transaction fees, may be zero.
}

// NewBuy creates a new Buy transaction.
func NewBuy(day Date, memo, instrument string, quantity Quantity, unitPrice, fees Money) Buy {
	return Buy{
		instrCmd:  instrCmd{baseCmd: baseCmd{Command: CmdBuy, Date: day, Memo: memo}, Instrument: instrument},
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Fees:      fees,
	}
}

// Cost returns the total cash cost of the purchase including fees.
func (t Buy) Cost() Money { return t.UnitPrice.Mul(t.Quantity).Add(t.Fees) }

// MarshalJSON implements the json.Marshaler interface for Buy.
func (t Buy) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.instrCmd)
	w.Append("quantity", t.Quantity)
	w.Append("unitPrice", t.UnitPrice.value)
	w.Optional("fees", t.Fees.value)
	w.Optional("currency", t.UnitPrice.cur)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Buy.
func (t *Buy) UnmarshalJSON(data []byte) error {
	var temp struct {
		instrCmd
		tradeCmd
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.instrCmd = temp.instrCmd
	t.Quantity = temp.tradeCmd.quantity()
	t.UnitPrice = temp.tradeCmd.unitPrice()
	t.Fees = temp.tradeCmd.fees()
	return nil
}

func (t Buy) Equal(other Transaction) bool {
	o, ok := other.(Buy)
	return ok && t.instrCmd == o.instrCmd && t.Quantity.Equal(o.Quantity) &&
		t.UnitPrice.Equal(o.UnitPrice) && t.Fees.Equal(o.Fees)
}

// Validate checks the Buy transaction's fields. It ensures that the quantity
// and unit price are positive and fees are not negative.
func (t Buy) Validate(_ *Ledger) (Transaction, error) {
	if err := t.instrCmd.Validate(); err != nil {
		return t, err
	}
	if !t.Quantity.IsPositive() {
		return t, fmt.Errorf("buy transaction quantity must be positive, got %s", t.Quantity)
	}
	if !t.UnitPrice.IsPositive() {
		return t, fmt.Errorf("buy transaction unit price must be positive, got %s", t.UnitPrice)
	}
	if t.Fees.IsNegative() {
		return t, fmt.Errorf("buy transaction fees cannot be negative, got %s", t.Fees)
	}
	return t, nil
}

// Sell represents a transaction where a quantity of an instrument is sold
// at a unit price, minus transaction fees.
type Sell struct {
	instrCmd
	Quantity  Quantity // Quantity is the number of shares or units sold, always positive.
	UnitPrice Money    // UnitPrice is the price received per unit.
	Fees      Money    // Fees is the total transaction fees, may be zero.
}

// NewSell creates a new Sell transaction.
func NewSell(day Date, memo, instrument string, quantity Quantity, unitPrice, fees Money) Sell {
	return Sell{
		instrCmd:  instrCmd{baseCmd: baseCmd{Command: CmdSell, Date: day, Memo: memo}, Instrument: instrument},
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Fees:      fees,
	}
}

// Proceeds returns the net cash received from the sale after fees.
func (t Sell) Proceeds() Money { return t.UnitPrice.Mul(t.Quantity).Sub(t.Fees) }

// MarshalJSON implements the json.Marshaler interface for Sell.
func (t Sell) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.instrCmd)
	w.Append("quantity", t.Quantity)
	w.Append("unitPrice", t.UnitPrice.value)
	w.Optional("fees", t.Fees.value)
	w.Optional("currency", t.UnitPrice.cur)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Sell.
func (t *Sell) UnmarshalJSON(data []byte) error {
	var temp struct {
		instrCmd
		tradeCmd
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.instrCmd = temp.instrCmd
	t.Quantity = temp.tradeCmd.quantity()
	t.UnitPrice = temp.tradeCmd.unitPrice()
	t.Fees = temp.tradeCmd.fees()
	return nil
}

func (t Sell) Equal(other Transaction) bool {
	o, ok := other.(Sell)
	return ok && t.instrCmd == o.instrCmd && t.Quantity.Equal(o.Quantity) &&
		t.UnitPrice.Equal(o.UnitPrice) && t.Fees.Equal(o.Fees)
}

// Validate checks the Sell transaction's fields. It ensures the quantity and
// unit price are positive and that the position on the transaction date is
// sufficient to cover the sale.
func (t Sell) Validate(ledger *Ledger) (Transaction, error) {
	if err := t.instrCmd.Validate(); err != nil {
		return t, err
	}
	if !t.Quantity.IsPositive() {
		return t, fmt.Errorf("sell transaction quantity must be positive, got %s", t.Quantity)
	}
	if !t.UnitPrice.IsPositive() {
		return t, fmt.Errorf("sell transaction unit price must be positive, got %s", t.UnitPrice)
	}
	if t.Fees.IsNegative() {
		return t, fmt.Errorf("sell transaction fees cannot be negative, got %s", t.Fees)
	}
	if ledger != nil {
		pos := ledger.Position(t.Instrument, t.Date)
		if pos.LessThan(t.Quantity) {
			return t, fmt.Errorf("on %s, cannot sell %v of %s, position is only %v", t.When(), t.Quantity, t.Instrument, pos)
		}
	}
	return t, nil
}

// Deposit represents a transaction where cash is added to the account.
type Deposit struct {
	baseCmd
	Amount Money // Amount is the quantity of cash deposited.
}

// NewDeposit creates a new Deposit transaction.
func NewDeposit(day Date, memo string, amount Money) Deposit {
	return Deposit{
		baseCmd: baseCmd{Command: CmdDeposit, Date: day, Memo: memo},
		Amount:  amount,
	}
}

func (t Deposit) Currency() string { return t.Amount.Currency() }

// MarshalJSON implements the json.Marshaler interface for Deposit.
func (t Deposit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.EmbedFrom(t.Amount)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Deposit.
func (t *Deposit) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseCmd
		amountCmd
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseCmd = temp.baseCmd
	t.Amount = temp.Money()
	return nil
}

func (t Deposit) Equal(other Transaction) bool {
	o, ok := other.(Deposit)
	return ok && t.baseCmd == o.baseCmd && t.Amount.Equal(o.Amount)
}

// Validate checks the Deposit transaction's fields. It ensures the deposit
// amount is positive.
func (t Deposit) Validate(_ *Ledger) (Transaction, error) {
	t.baseCmd.Validate()
	if !t.Amount.IsPositive() {
		return t, fmt.Errorf("deposit amount must be positive, got %v", t.Amount)
	}
	return t, nil
}

// Withdraw represents a transaction where cash is removed from the account.
type Withdraw struct {
	baseCmd
	Amount Money // Amount is the quantity of cash withdrawn, always positive.
}

// NewWithdraw creates a new Withdraw transaction.
func NewWithdraw(day Date, memo string, amount Money) Withdraw {
	return Withdraw{
		baseCmd: baseCmd{Command: CmdWithdraw, Date: day, Memo: memo},
		Amount:  amount,
	}
}

func (t Withdraw) Currency() string { return t.Amount.Currency() }

// MarshalJSON implements the json.Marshaler interface for Withdraw.
func (t Withdraw) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.EmbedFrom(t.Amount)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Withdraw.
func (t *Withdraw) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseCmd
		amountCmd
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseCmd = temp.baseCmd
	t.Amount = temp.Money()
	return nil
}

func (t Withdraw) Equal(other Transaction) bool {
	o, ok := other.(Withdraw)
	return ok && t.baseCmd == o.baseCmd && t.Amount.Equal(o.Amount)
}

// Validate checks the Withdraw transaction's fields. It ensures the amount is
// positive and that there is sufficient cash on the transaction date.
func (t Withdraw) Validate(ledger *Ledger) (Transaction, error) {
	t.baseCmd.Validate()
	if !t.Amount.IsPositive() {
		return t, fmt.Errorf("withdraw amount must be positive, got %s", t.Amount)
	}
	if ledger != nil {
		cash := ledger.CashBalance(t.Date)
		if cash.LessThan(t.Amount) {
			return t, fmt.Errorf("on %s, cannot withdraw %s cash balance is %s", t.When(), t.Amount, cash)
		}
	}
	return t, nil
}
