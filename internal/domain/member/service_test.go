package member

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/jpashop/internal/domain/address"
)

// memoryRepository 测试用的内存仓储
type memoryRepository struct {
	nextID  uint
	members []*Member
}

func (r *memoryRepository) Create(_ context.Context, m *Member) error {
	r.nextID++
	m.ID = r.nextID
	r.members = append(r.members, m)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uint) (*Member, error) {
	for _, m := range r.members {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *memoryRepository) FindAll(_ context.Context) ([]*Member, error) {
	return r.members, nil
}

func (r *memoryRepository) FindByName(_ context.Context, name string) ([]*Member, error) {
	var found []*Member
	for _, m := range r.members {
		if m.Name == name {
			found = append(found, m)
		}
	}
	return found, nil
}

func (r *memoryRepository) Update(_ context.Context, _ *Member) error {
	return nil
}

func TestJoin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryRepository{})

	m, err := svc.Join(ctx, "kim", address.New("서울", "경기", "123-123"))
	require.NoError(t, err)

	found, err := svc.FindOne(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, found)
}

func TestJoinDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryRepository{})

	_, err := svc.Join(ctx, "kim1", address.Address{})
	require.NoError(t, err)

	_, err = svc.Join(ctx, "kim1", address.Address{})
	assert.ErrorIs(t, err, ErrDuplicateMember)
}

func TestJoinEmptyName(t *testing.T) {
	svc := NewService(&memoryRepository{})

	_, err := svc.Join(context.Background(), "  ", address.Address{})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryRepository{})

	m, err := svc.Join(ctx, "kim", address.Address{})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, m.ID, "lee")
	require.NoError(t, err)
	assert.Equal(t, "lee", updated.Name)

	_, err = svc.Update(ctx, 999, "park")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
