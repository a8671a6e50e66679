package pairs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a numeric request field that accepts a JSON number, a numeric
// string or null. An empty string counts as absent; 0 is a value.
type Number struct {
	raw string
	set bool
}

// NewNumber returns a present Number holding raw.
func NewNumber(raw string) Number {
	return Number{raw: strings.TrimSpace(raw), set: strings.TrimSpace(raw) != ""}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NewNumber(s)
		return nil
	}
	*n = NewNumber(string(data))
	return nil
}

// IsSet reports whether the field carried a value.
func (n Number) IsSet() bool {
	return n.set
}

// Decimal parses the value as a decimal.
func (n Number) Decimal() (decimal.Decimal, error) {
	if !n.set {
		return decimal.Zero, fmt.Errorf("value is missing")
	}
	return decimal.NewFromString(n.raw)
}

// Int parses the value as a whole number. "100" and "100.0" are accepted,
// "100.5" is not.
func (n Number) Int() (int64, error) {
	if !n.set {
		return 0, fmt.Errorf("value is missing")
	}
	if v, err := strconv.ParseInt(n.raw, 10, 64); err == nil {
		return v, nil
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s is not a whole number", n.raw)
	}
	return d.IntPart(), nil
}

// PairInput is the request body for creating or updating a pair.
// CompanyID and IsSettled are only read by Create.
type PairInput struct {
	Name             string `json:"name"`
	Link             string `json:"link"`
	AnalysisRecord   string `json:"analysisRecord"`
	BuyShares        Number `json:"buyShares"`
	SellShares       Number `json:"sellShares"`
	BuyPrice         Number `json:"buyPrice"`
	SellPrice        Number `json:"sellPrice"`
	BuyStockCode     string `json:"buyStockCode"`
	SellStockCode    string `json:"sellStockCode"`
	CurrentBuyPrice  Number `json:"currentBuyPrice"`
	CurrentSellPrice Number `json:"currentSellPrice"`
	CompanyID        Number `json:"companyId"`
	IsSettled        bool   `json:"isSettled"`
}

// pairFields is a PairInput after validation.
type pairFields struct {
	name             string
	link             *string
	analysisRecord   *string
	buyShares        int64
	sellShares       int64
	buyPrice         decimal.Decimal
	sellPrice        decimal.Decimal
	buyStockCode     *string
	sellStockCode    *string
	currentBuyPrice  decimal.NullDecimal
	currentSellPrice decimal.NullDecimal
}

// Validate checks the fields shared by create and update and returns the
// parsed values. Every failure wraps ErrInvalidArgument.
func (in PairInput) Validate() (pairFields, error) {
	var f pairFields

	f.name = strings.TrimSpace(in.Name)
	if f.name == "" {
		return f, invalidArgument("name is required")
	}

	var err1, err2, err3, err4 error
	f.buyShares, err1 = in.BuyShares.Int()
	f.sellShares, err2 = in.SellShares.Int()
	f.buyPrice, err3 = in.BuyPrice.Decimal()
	f.sellPrice, err4 = in.SellPrice.Decimal()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return f, invalidArgument("shares and prices must be numeric")
	}
	if f.buyShares <= 0 || f.sellShares <= 0 {
		return f, invalidArgument("shares must be positive")
	}

	var err error
	if f.currentBuyPrice, err = optionalDecimal(in.CurrentBuyPrice); err != nil {
		return f, invalidArgument("currentBuyPrice must be numeric")
	}
	if f.currentSellPrice, err = optionalDecimal(in.CurrentSellPrice); err != nil {
		return f, invalidArgument("currentSellPrice must be numeric")
	}

	f.link = nullIfBlank(in.Link)
	f.analysisRecord = nullIfBlank(in.AnalysisRecord)
	f.buyStockCode = nullIfBlank(in.BuyStockCode)
	f.sellStockCode = nullIfBlank(in.SellStockCode)

	return f, nil
}

func optionalDecimal(n Number) (decimal.NullDecimal, error) {
	if !n.IsSet() {
		return decimal.NullDecimal{}, nil
	}
	d, err := n.Decimal()
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func nullIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseUint(raw string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
