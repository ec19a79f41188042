package inventory

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/deckforge/internal/apiclient"
	"github.com/jason-s-yu/deckforge/internal/models"
)

type fakeAPI struct {
	items     []models.InventoryItem
	imported  []string
	importErr error
	deleted   []int
}

func (f *fakeAPI) ListInventory(context.Context) ([]models.InventoryItem, error) {
	return f.items, nil
}

func (f *fakeAPI) AddInventory(_ context.Context, name string) (*models.InventoryItem, error) {
	item := models.InventoryItem{ID: len(f.items) + 1, Card: models.Card{Name: name, Quantity: 1}}
	f.items = append(f.items, item)
	return &item, nil
}

func (f *fakeAPI) DeleteInventory(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) ImportInventory(_ context.Context, text string) error {
	f.imported = append(f.imported, text)
	return f.importErr
}

func newManager(api API) *Manager {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(api, l)
}

func TestAddTrimsName(t *testing.T) {
	api := &fakeAPI{}
	m := newManager(api)
	item, err := m.Add(context.Background(), "  Sol Ring ")
	require.NoError(t, err)
	assert.Equal(t, "Sol Ring", item.Name)

	_, err = m.Add(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Len(t, api.items, 1)
}

func TestRemove(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, newManager(api).Remove(context.Background(), 4))
	assert.Equal(t, []int{4}, api.deleted)
}

func TestImportPartialIsNotAnError(t *testing.T) {
	api := &fakeAPI{importErr: &apiclient.PartialImportError{Failed: []string{"Not A Card"}, Message: "Some cards failed"}}
	res, err := newManager(api).Import(context.Background(), "Sol Ring\nNot A Card")
	require.NoError(t, err)
	assert.True(t, res.Partial())
	assert.Equal(t, []string{"Not A Card"}, res.Failed)
}

func TestImportFailure(t *testing.T) {
	api := &fakeAPI{importErr: &apiclient.ServiceError{Op: "import cards", StatusCode: 500}}
	_, err := newManager(api).Import(context.Background(), "Sol Ring")
	var se *apiclient.ServiceError
	assert.True(t, errors.As(err, &se))
}

func TestImportBlankSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	res, err := newManager(api).Import(context.Background(), "\n  \n")
	require.NoError(t, err)
	assert.False(t, res.Partial())
	assert.Empty(t, api.imported)
}
