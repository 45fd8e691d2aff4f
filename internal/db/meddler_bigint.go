package db

import (
	"database/sql"
	"fmt"
	"math/big"

	"github.com/russross/meddler"
)

func init() {
	// Register custom meddler converter for *big.Int
	meddler.Register("bigint", BigIntMeddler{})
}

// BigIntMeddler handles conversion between *big.Int and a decimal string
// column. Monetary amounts and uint256 identifiers never touch float or
// int64, so ordering comparisons must happen in Go, not in SQL.
type BigIntMeddler struct{}

func (b BigIntMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// Use sql.NullString to handle NULL values
	return new(sql.NullString), nil
}

func (b BigIntMeddler) PostRead(fieldAddr, scanTarget interface{}) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	ptr, ok := fieldAddr.(**big.Int)
	if !ok {
		return fmt.Errorf("expected **big.Int, got %T", fieldAddr)
	}

	if !ns.Valid {
		*ptr = nil
		return nil
	}

	value, valid := new(big.Int).SetString(ns.String, 10)
	if !valid {
		return fmt.Errorf("invalid big integer value %q", ns.String)
	}
	*ptr = value

	return nil
}

func (b BigIntMeddler) PreWrite(field interface{}) (saveValue interface{}, err error) {
	value, ok := field.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected *big.Int, got %T", field)
	}

	if value == nil {
		return nil, nil
	}

	return value.String(), nil
}
