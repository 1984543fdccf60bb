package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var errParamObjectRequired = fmt.Errorf("expected a single object parameter")

// parseParams decodes the single object parameter every mutating method takes.
func parseParams(req *RPCRequest, dst interface{}) error {
	if len(req.Params) != 1 {
		return errParamObjectRequired
	}
	if err := json.Unmarshal(req.Params[0], dst); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// parseOptionalParams tolerates an empty parameter list.
func parseOptionalParams(req *RPCRequest, dst interface{}) error {
	if len(req.Params) == 0 {
		return nil
	}
	return parseParams(req, dst)
}

func addressParam(field, raw string) (common.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("%s: %q is not a hex address", field, raw)
	}
	return common.HexToAddress(trimmed), nil
}

func hashParam(field, raw string) (common.Hash, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "0x") || len(trimmed) != 2+common.HashLength*2 {
		return common.Hash{}, fmt.Errorf("%s: %q is not a 32-byte hex hash", field, raw)
	}
	return common.HexToHash(trimmed), nil
}

func amountParam(field, raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("%s: invalid amount %q", field, raw)
	}
	return value, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
