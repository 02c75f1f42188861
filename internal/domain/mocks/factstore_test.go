package mocks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

func TestFactStore_ConcurrentErrAndReads(t *testing.T) {
	m := NewFactStore()
	m.AddPerson(entities.Person{Hash: "p1", CompanyID: 1, Role: entities.RoleHead, Names: []string{"Іванов Іван"}})
	errBoom := errors.New("boom")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.SetErr(errBoom)
			m.SetErr(nil)
		}()
		go func() {
			defer wg.Done()
			if _, err := m.Persons(ctx, 1); err != nil {
				assert.ErrorIs(t, err, errBoom)
			}
			if _, err := m.ListRevisions(ctx); err != nil {
				assert.ErrorIs(t, err, errBoom)
			}
			if err := m.MergePerson(ctx, &entities.Person{Hash: "p2", CompanyID: 1, Role: entities.RoleHead}); err != nil {
				assert.ErrorIs(t, err, errBoom)
			}
		}()
	}
	wg.Wait()

	m.SetErr(errBoom)
	_, err := m.Persons(ctx, 1)
	assert.ErrorIs(t, err, errBoom)
}
