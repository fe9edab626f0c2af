package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	activitylogDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/activitylog"
)

type mockRepository struct {
	logs []*activitylogDatamodel.ActivityLog
}

func (m *mockRepository) Create(log *activitylogDatamodel.ActivityLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockRepository) List(limit, offset int) ([]*activitylogDatamodel.ActivityLog, int64, error) {
	total := int64(len(m.logs))
	if offset >= len(m.logs) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(m.logs) {
		end = len(m.logs)
	}
	return m.logs[offset:end], total, nil
}

func TestRecordAppendsEntry(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo, nil)

	userID := uuid.New()
	err := service.Record(context.Background(), &userID, "User logged in: ada@example.com", nil, nil)

	require.NoError(t, err)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, "User logged in: ada@example.com", repo.logs[0].Action)
	assert.Equal(t, &userID, repo.logs[0].UserID)
	assert.False(t, repo.logs[0].Timestamp.IsZero())
}

func TestRecordAllowsNilUser(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo, nil)

	err := service.Record(context.Background(), nil, "Login failed (email not found): ghost@example.com", nil, nil)

	require.NoError(t, err)
	require.Len(t, repo.logs, 1)
	assert.Nil(t, repo.logs[0].UserID)
}

func TestListRequiresPrivilegedRole(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo, nil)
	ctx := context.Background()

	org := uuid.New()
	_, err := service.List(ctx, auth.Principal{ID: uuid.New(), Role: auth.RoleEmployee, OrganisationID: &org}, 1, 10)
	assert.Equal(t, internal.ErrForbidden, err)

	_, err = service.List(ctx, auth.Principal{ID: uuid.New(), Role: auth.RoleDepartmentManager, OrganisationID: &org}, 1, 10)
	assert.Equal(t, internal.ErrForbidden, err)

	_, listErr := service.List(ctx, auth.Principal{ID: uuid.New(), Role: auth.RoleOrganisationAdmin, OrganisationID: &org}, 1, 10)
	assert.NoError(t, listErr)
}

func TestListPagination(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo, nil)
	ctx := context.Background()
	actor := auth.Principal{ID: uuid.New(), Role: auth.RoleSuperadmin}

	for i := 0; i < 5; i++ {
		require.NoError(t, service.Record(ctx, nil, "entry", nil, nil))
	}

	page, err := service.List(ctx, actor, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Len(t, page.Logs, 2)
}

func TestListClampsPageParameters(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo, nil)
	ctx := context.Background()
	actor := auth.Principal{ID: uuid.New(), Role: auth.RoleSuperadmin}

	page, err := service.List(ctx, actor, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageLimit, page.Limit)

	page, err = service.List(ctx, actor, 1, 10_000)
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, page.Limit)
}
