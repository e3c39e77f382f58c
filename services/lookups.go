package services

import (
	"errors"

	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/store"
)

// Catalog resolves service offerings inside the caller's transaction.
type Catalog interface {
	GetServiceOffering(tx *store.Tx, id string) (*models.Service, error)
}

// Directory resolves actors inside the caller's transaction. A missing actor
// is reported as store.ErrNotFound.
type Directory interface {
	GetActor(tx *store.Tx, id string) (*models.User, error)
}

type storeCatalog struct{}

func (storeCatalog) GetServiceOffering(tx *store.Tx, id string) (*models.Service, error) {
	svc, err := tx.ServiceByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, infra("failed to load service offering", err)
	}
	return svc, nil
}

type storeDirectory struct{}

func (storeDirectory) GetActor(tx *store.Tx, id string) (*models.User, error) {
	return tx.UserByID(id)
}
