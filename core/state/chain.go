package state

func (m *Manager) ChainHeight() (uint64, error) {
	return m.getUint(hashKey(chainHeightKey))
}

func (m *Manager) SetChainHeight(height uint64) error {
	return m.put(hashKey(chainHeightKey), height)
}
