package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/checkpoints"
)

func (m *Manager) TokenBalance(addr common.Address) (*big.Int, error) {
	return m.getBig(hashKey(tokenBalancePrefix, addr.Bytes()))
}

func (m *Manager) SetTokenBalance(addr common.Address, amount *big.Int) error {
	return m.put(hashKey(tokenBalancePrefix, addr.Bytes()), nonNil(amount))
}

func (m *Manager) TokenVotesTrace(addr common.Address) (*checkpoints.Trace, error) {
	return m.getTrace(hashKey(tokenVotesPrefix, addr.Bytes()))
}

func (m *Manager) PutTokenVotesTrace(addr common.Address, trace *checkpoints.Trace) error {
	return m.putTrace(hashKey(tokenVotesPrefix, addr.Bytes()), trace)
}

func (m *Manager) TokenSupplyTrace() (*checkpoints.Trace, error) {
	return m.getTrace(hashKey(tokenSupplyKey))
}

func (m *Manager) PutTokenSupplyTrace(trace *checkpoints.Trace) error {
	return m.putTrace(hashKey(tokenSupplyKey), trace)
}
