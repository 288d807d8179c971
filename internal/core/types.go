package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// NormalizedKey is the case- and accent-insensitive join key derived from a
// name or identifier. It is never displayed.
type NormalizedKey string

// MoneyAmount is a parsed currency value.
type MoneyAmount = decimal.Decimal

// PhoneNumber holds digits only, with the country code added when needed.
type PhoneNumber string

// MinUsablePhoneDigits is the shortest phone number considered reachable.
const MinUsablePhoneDigits = 8

// Usable reports whether the number is long enough to message.
func (p PhoneNumber) Usable() bool {
	return len(p) >= MinUsablePhoneDigits
}

// Cell is a raw value read from an export. Text is always set; Number is
// set when the loader typed the whole column as numeric.
type Cell struct {
	Text     string
	Number   float64
	IsNumber bool
}

// TextCell returns a text cell.
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NumberCell returns a numeric cell that keeps the text it was read from.
func NumberCell(text string, f float64) Cell {
	return Cell{Text: text, Number: f, IsNumber: true}
}

// String returns the cell as it appeared in the file.
func (c Cell) String() string {
	return c.Text
}

// Empty reports whether the cell holds no value.
func (c Cell) Empty() bool {
	return !c.IsNumber && c.Text == ""
}

// SortSpec selects the ordering of a reconciliation result.
type SortSpec struct {
	Column string // "cashback", "total_spent" or "name"
	Dir    string // "asc" or "desc"
}

// Sort columns accepted by SortSpec.
const (
	SortByCashback   = "cashback"
	SortByTotalSpent = "total_spent"
	SortByName       = "name"
)

// DefaultSort ranks customers from the largest cashback down.
var DefaultSort = SortSpec{Column: SortByCashback, Dir: "desc"}

// Options configures one reconciliation run.
type Options struct {
	Rate      decimal.Decimal // Fraction of each sale returned as cashback (0.10 = 10%)
	UnitPrice decimal.Decimal // Value of one reward unit; zero disables RewardUnits
	Sort      SortSpec        // Zero value means DefaultSort
}

// Columns names the resolved semantic columns of both inputs.
type Columns struct {
	SaleKey       string // Buyer identifier in the sales table
	SaleAmount    string // Sale amount in the sales table
	RegistryName  string // Display name in the registry table
	RegistryPhone string // Optional; empty when the registry has no phone column
}

// SaleRecord is a sales row after normalization.
type SaleRecord struct {
	MatchKey NormalizedKey
	Amount   MoneyAmount
}

// CustomerRecord is a registry row after normalization.
type CustomerRecord struct {
	MatchKey    NormalizedKey
	DisplayName string
	Phone       PhoneNumber
}

// Balance is the aggregated cashback of one (display name, phone) pair.
type Balance struct {
	DisplayName string          `json:"displayName"`
	Phone       PhoneNumber     `json:"phone"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	Cashback    decimal.Decimal `json:"cashback"`
	RewardUnits decimal.Decimal `json:"rewardUnits"`
	Purchases   int             `json:"purchases"`
}

// Identity returns the grouping key of the balance.
func (b Balance) Identity() string {
	return b.DisplayName + "\x1f" + string(b.Phone)
}

// Upload is one file handed over by a frontend.
type Upload struct {
	Name string
	Data []byte
}

// RunInput carries the files and settings of one reconciliation run.
type RunInput struct {
	Sales    []Upload // One or more monthly sales exports
	Registry Upload   // Customer registry export
	Options  Options
}

// RunStats summarizes what a run consumed.
type RunStats struct {
	SalesFiles        int `json:"salesFiles"`
	SalesRows         int `json:"salesRows"`
	DuplicatesRemoved int `json:"duplicatesRemoved"`
	RegistryRows      int `json:"registryRows"`
	Customers         int `json:"customers"`
}

// Result is the outcome of Service.Run. It is never retained by the core.
type Result struct {
	RunID    string        `json:"runId"`
	Columns  Columns       `json:"columns"`
	Balances []Balance     `json:"balances"`
	Stats    RunStats      `json:"stats"`
	Duration time.Duration `json:"duration"`
}
