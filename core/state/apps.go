package state

import (
	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/apps"
	"vebetterdao/native/checkpoints"
)

// storedApp is the RLP shape of an app registry record.
type storedApp struct {
	ID                       common.Hash
	Name                     string
	Admin                    common.Address
	TeamWallet               common.Address
	TeamAllocationPercentage uint64
	MetadataURI              string
	CreatedAtBlock           uint64
}

func (m *Manager) AppsGet(id common.Hash) (*apps.App, bool, error) {
	var stored storedApp
	ok, err := m.get(hashKey(appsRecordPrefix, id.Bytes()), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &apps.App{
		ID:                       stored.ID,
		Name:                     stored.Name,
		Admin:                    stored.Admin,
		TeamWallet:               stored.TeamWallet,
		TeamAllocationPercentage: stored.TeamAllocationPercentage,
		MetadataURI:              stored.MetadataURI,
		CreatedAtBlock:           stored.CreatedAtBlock,
	}, true, nil
}

// AppsPut stores the record and appends first-seen ids to the registry index.
func (m *Manager) AppsPut(app *apps.App) error {
	_, exists, err := m.AppsGet(app.ID)
	if err != nil {
		return err
	}
	stored := storedApp{
		ID:                       app.ID,
		Name:                     app.Name,
		Admin:                    app.Admin,
		TeamWallet:               app.TeamWallet,
		TeamAllocationPercentage: app.TeamAllocationPercentage,
		MetadataURI:              app.MetadataURI,
		CreatedAtBlock:           app.CreatedAtBlock,
	}
	if err := m.put(hashKey(appsRecordPrefix, app.ID.Bytes()), stored); err != nil {
		return err
	}
	if exists {
		return nil
	}
	index, err := m.AppsAll()
	if err != nil {
		return err
	}
	index = append(index, app.ID)
	return m.put(hashKey(appsIndexKey), index)
}

func (m *Manager) AppsAll() ([]common.Hash, error) {
	var index []common.Hash
	if _, err := m.get(hashKey(appsIndexKey), &index); err != nil {
		return nil, err
	}
	return index, nil
}

func (m *Manager) AppsEligibilityFlag(id common.Hash) (*checkpoints.Flag, error) {
	return m.getFlag(hashKey(appsEligiblePrefix, id.Bytes()))
}

func (m *Manager) AppsPutEligibilityFlag(id common.Hash, flag *checkpoints.Flag) error {
	return m.putFlag(hashKey(appsEligiblePrefix, id.Bytes()), flag)
}
