package account

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lofmon/internal/domain/opportunity"
	"lofmon/pkg/errors"
)

// Mock repository for testing
type mockRepository struct {
	accounts  []*TradingAccount
	saveCalls int
	loadErr   error
}

func (m *mockRepository) LoadAll(ctx context.Context) ([]*TradingAccount, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.accounts, nil
}

func (m *mockRepository) SaveAll(ctx context.Context, accounts []*TradingAccount) error {
	m.saveCalls++
	m.accounts = accounts
	return nil
}

func testAccount(name string) *TradingAccount {
	return &TradingAccount{
		Name:   name,
		Broker: "华泰证券",
		Fees: opportunity.NewFeeStructure(
			decimal.NewFromFloat(0.12),
			decimal.NewFromFloat(0.05),
			decimal.NewFromFloat(0.025),
		),
	}
}

// countDefaults is the invariant probe: at most one default at any time.
func countDefaults(accounts []*TradingAccount) int {
	n := 0
	for _, acc := range accounts {
		if acc.IsDefault {
			n++
		}
	}
	return n
}

func TestService_Add_FirstBecomesDefault(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	first := testAccount("主账户")
	require.NoError(t, s.Add(ctx, first))
	assert.True(t, first.IsDefault)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second := testAccount("备用账户")
	require.NoError(t, s.Add(ctx, second))
	assert.False(t, second.IsDefault)

	list := s.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, 1, countDefaults(list))
}

func TestService_Add_NewDefaultDemotesPrevious(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	first := testAccount("主账户")
	require.NoError(t, s.Add(ctx, first))

	second := testAccount("新主账户")
	second.IsDefault = true
	require.NoError(t, s.Add(ctx, second))

	list := s.List(ctx)
	assert.Equal(t, 1, countDefaults(list))
	assert.False(t, list[0].IsDefault)
	assert.True(t, list[1].IsDefault)
}

func TestService_Add_Validation(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	err := s.Add(ctx, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	err = s.Add(ctx, &TradingAccount{})
	var vErr *errors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestService_UpdateAccount(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	first := testAccount("主账户")
	second := testAccount("备用账户")
	require.NoError(t, s.Add(ctx, first))
	require.NoError(t, s.Add(ctx, second))

	name := "备用账户（低佣）"
	promote := true
	require.NoError(t, s.UpdateAccount(ctx, second.ID, Update{Name: &name, IsDefault: &promote}))

	list := s.List(ctx)
	assert.Equal(t, 1, countDefaults(list))
	assert.False(t, list[0].IsDefault)
	assert.True(t, list[1].IsDefault)
	assert.Equal(t, name, list[1].Name)

	err := s.UpdateAccount(ctx, uuid.New(), Update{Name: &name})
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestService_UpdateAccount_DemoteLeavesNoDefault(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	acc := testAccount("主账户")
	require.NoError(t, s.Add(ctx, acc))

	demote := false
	require.NoError(t, s.UpdateAccount(ctx, acc.ID, Update{IsDefault: &demote}))

	list := s.List(ctx)
	assert.Equal(t, 0, countDefaults(list))

	// Default() still answers: it falls back to the first account
	def := s.Default(ctx)
	require.NotNil(t, def)
	assert.Equal(t, acc.ID, def.ID)
}

func TestService_Delete(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	first := testAccount("主账户")
	second := testAccount("备用账户")
	require.NoError(t, s.Add(ctx, first))
	require.NoError(t, s.Add(ctx, second))

	// Deleting the default promotes the first remaining account
	require.NoError(t, s.Delete(ctx, first.ID))

	list := s.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)

	err := s.Delete(ctx, first.ID)
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestService_Delete_NonDefaultKeepsFlag(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	first := testAccount("主账户")
	second := testAccount("备用账户")
	require.NoError(t, s.Add(ctx, first))
	require.NoError(t, s.Add(ctx, second))

	require.NoError(t, s.Delete(ctx, second.ID))

	list := s.List(ctx)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault)
}

func TestService_SetDefault(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	first := testAccount("主账户")
	second := testAccount("备用账户")
	third := testAccount("测试账户")
	require.NoError(t, s.Add(ctx, first))
	require.NoError(t, s.Add(ctx, second))
	require.NoError(t, s.Add(ctx, third))

	require.NoError(t, s.SetDefault(ctx, third.ID))

	list := s.List(ctx)
	assert.Equal(t, 1, countDefaults(list))
	assert.True(t, list[2].IsDefault)

	def := s.Default(ctx)
	require.NotNil(t, def)
	assert.Equal(t, third.ID, def.ID)

	err := s.SetDefault(ctx, uuid.New())
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestService_Default_Empty(t *testing.T) {
	s := NewService(&mockRepository{})

	assert.Nil(t, s.Default(context.Background()))
}

func TestService_Load_DegradesToEmpty(t *testing.T) {
	s := NewService(&mockRepository{loadErr: errors.ErrUnavailable})

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Empty(t, s.List(context.Background()))
}

func TestService_List_ReturnsCopies(t *testing.T) {
	s := NewService(&mockRepository{})
	ctx := context.Background()

	acc := testAccount("主账户")
	require.NoError(t, s.Add(ctx, acc))

	list := s.List(ctx)
	list[0].Name = "mutated"

	assert.Equal(t, "主账户", s.List(ctx)[0].Name)
}
