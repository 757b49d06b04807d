package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsconsole/lib/apperr"
	"opsconsole/lib/data"
	"opsconsole/lib/models"
)

var (
	admin    = models.Actor{ID: "user_admin", Role: models.RoleAdmin}
	director = models.Actor{ID: "user_director", Role: models.RoleDirector}
	staff    = models.Actor{ID: "user_staff", Role: models.RoleStaff}
)

func newApprovals(t *testing.T, opts ...Option) (*Approvals, *data.MemoryStore) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store := data.NewMemoryStore()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.FixedZone("IST", 19800))
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return NewApprovals(store, logger, opts...), store
}

func TestRequest_StaffCreatesRequested(t *testing.T) {
	// Arrange
	approvals, _ := newApprovals(t)
	remarks := "renewal signed"

	// Act
	ap, err := approvals.Request(context.Background(), staff, "client", "client_1", &remarks)

	// Assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ap.ID, "appr_"))
	assert.Equal(t, models.ApprovalRequested, ap.Status)
	assert.Equal(t, models.ItemClient, ap.ItemType)
	assert.Equal(t, "user_staff", ap.RequestedBy)
	assert.Equal(t, "2025-03-10T03:00:00Z", ap.CreatedAt)
	assert.Equal(t, &remarks, ap.StaffRemarks)
	assert.Nil(t, ap.ApprovedBy)
}

func TestRequest_Rejections(t *testing.T) {
	approvals, _ := newApprovals(t)
	ctx := context.Background()

	_, err := approvals.Request(ctx, director, "client", "client_1", nil)
	assert.True(t, apperr.IsPermissionDenied(err))

	_, err = approvals.Request(ctx, staff, "asset", "asset_1", nil)
	assert.True(t, apperr.IsValidation(err))

	_, err = approvals.Request(ctx, admin, "employee", " ", nil)
	assert.True(t, apperr.IsValidation(err))

	list, err := approvals.List(ctx, admin, models.ApprovalFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRequest_ItemCheck(t *testing.T) {
	approvals, store := newApprovals(t, WithItemCheck())
	ctx := context.Background()

	_, err := approvals.Request(ctx, staff, "contractor", "contractor_1", nil)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, store.Insert(ctx, data.CollectionContractors, models.Document{"id": "contractor_1", "name": "Meera"}))
	_, err = approvals.Request(ctx, staff, "contractor", "contractor_1", nil)
	assert.NoError(t, err)
}

func TestAct_HoldThenApprove(t *testing.T) {
	// Arrange
	approvals, _ := newApprovals(t)
	ctx := context.Background()
	ap, err := approvals.Request(ctx, staff, "employee", "emp_1", nil)
	require.NoError(t, err)
	waiting := "waiting for documents"

	// Act
	held, err := approvals.Act(ctx, ap.ID, models.ActionHold, director, &waiting)
	require.NoError(t, err)
	approved, err := approvals.Act(ctx, ap.ID, models.ActionApprove, director, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalHold, held.Status)
	assert.Equal(t, &waiting, held.Notes)
	assert.Equal(t, models.ApprovalApproved, approved.Status)
	assert.Nil(t, approved.Notes)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "user_director", *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "2025-03-10T03:00:00Z", *approved.ApprovedAt)
	assert.Equal(t, "emp_1", approved.ItemID)
}

func TestAct_Rejections(t *testing.T) {
	approvals, _ := newApprovals(t)
	ctx := context.Background()
	ap, err := approvals.Request(ctx, staff, "client", "client_1", nil)
	require.NoError(t, err)

	_, err = approvals.Act(ctx, ap.ID, models.ActionApprove, staff, nil)
	assert.True(t, apperr.IsPermissionDenied(err))

	_, err = approvals.Act(ctx, ap.ID, models.ActionApprove, admin, nil)
	assert.True(t, apperr.IsPermissionDenied(err))

	_, err = approvals.Act(ctx, ap.ID, "escalate", director, nil)
	assert.True(t, apperr.IsValidation(err))

	_, err = approvals.Act(ctx, "appr_missing", models.ActionReject, director, nil)
	assert.True(t, apperr.IsNotFound(err))
}

func TestResetAll(t *testing.T) {
	approvals, _ := newApprovals(t)
	ctx := context.Background()
	for _, id := range []string{"client_1", "client_2"} {
		_, err := approvals.Request(ctx, staff, "client", id, nil)
		require.NoError(t, err)
	}

	_, err := approvals.ResetAll(ctx, director)
	assert.True(t, apperr.IsPermissionDenied(err))

	n, err := approvals.ResetAll(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = approvals.ResetAll(ctx, staff)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestList_Filters(t *testing.T) {
	approvals, _ := newApprovals(t)
	ctx := context.Background()
	first, err := approvals.Request(ctx, staff, "client", "client_1", nil)
	require.NoError(t, err)
	_, err = approvals.Request(ctx, staff, "employee", "emp_1", nil)
	require.NoError(t, err)
	_, err = approvals.Act(ctx, first.ID, models.ActionReject, director, nil)
	require.NoError(t, err)

	clients, err := approvals.List(ctx, director, models.ApprovalFilter{ItemType: models.ItemClient})
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, models.ApprovalRejected, clients[0].Status)

	requested, err := approvals.List(ctx, director, models.ApprovalFilter{Status: models.ApprovalRequested})
	require.NoError(t, err)
	require.Len(t, requested, 1)
	assert.Equal(t, "emp_1", requested[0].ItemID)

	_, err = approvals.List(ctx, director, models.ApprovalFilter{ItemType: "asset"})
	assert.True(t, apperr.IsValidation(err))
}

func TestRequest_SameItemKeepsIndependentRequests(t *testing.T) {
	// Arrange
	approvals, _ := newApprovals(t)
	ctx := context.Background()
	first, err := approvals.Request(ctx, staff, "client", "client_1", nil)
	require.NoError(t, err)
	second, err := approvals.Request(ctx, admin, "client", "client_1", nil)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// Act
	_, err = approvals.Act(ctx, first.ID, models.ActionApprove, director, nil)
	require.NoError(t, err)
	list, err := approvals.List(ctx, director, models.ApprovalFilter{ItemID: "client_1"})

	// Assert
	require.NoError(t, err)
	require.Len(t, list, 2)
	statuses := map[string]models.ApprovalStatus{}
	for _, ap := range list {
		statuses[ap.ID] = ap.Status
	}
	assert.Equal(t, models.ApprovalApproved, statuses[first.ID])
	assert.Equal(t, models.ApprovalRequested, statuses[second.ID])
}
