// Package workflow tracks approval requests for records. Approvals live in
// their own collection and never change the record they point at.
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/apperr"
	"opsconsole/lib/data"
	"opsconsole/lib/models"
	"opsconsole/lib/policy"
)

// collectionFor maps an item type onto the collection holding the item.
var collectionFor = map[models.ItemType]string{
	models.ItemClient:     data.CollectionClients,
	models.ItemContractor: data.CollectionContractors,
	models.ItemEmployee:   data.CollectionEmployees,
}

// Approvals is the Director-driven approval workflow.
type Approvals struct {
	store     data.RecordStore
	logger    *logrus.Logger
	now       func() time.Time
	cap       int
	checkItem bool
}

// Option configures Approvals.
type Option func(*Approvals)

// WithItemCheck makes Request fail with a NotFoundError when the referenced
// item does not exist.
func WithItemCheck() Option {
	return func(a *Approvals) { a.checkItem = true }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Approvals) { a.now = now }
}

// WithFetchCap bounds List.
func WithFetchCap(n int) Option {
	return func(a *Approvals) {
		if n > 0 {
			a.cap = n
		}
	}
}

// NewApprovals creates the workflow over store.
func NewApprovals(store data.RecordStore, logger *logrus.Logger, opts ...Option) *Approvals {
	if logger == nil {
		logger = logrus.New()
	}
	a := &Approvals{
		store:  store,
		logger: logger,
		now:    time.Now,
		cap:    data.DefaultFetchCap,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Request files a new approval request in the Requested state.
func (a *Approvals) Request(ctx context.Context, actor models.Actor, itemType, itemID string, remarks *string) (*models.Approval, error) {
	if err := policy.Authorize(actor.Role, policy.RequestApproval, policy.Resource{Kind: "approval"}); err != nil {
		return nil, err
	}
	t, err := models.ParseItemType(itemType)
	if err != nil {
		return nil, err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, apperr.Invalid("item_id", "is required")
	}

	if a.checkItem {
		doc, err := data.FindByID(ctx, a.store, collectionFor[t], itemID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, apperr.NotFound(string(t), itemID)
		}
	}

	approval := &models.Approval{
		ID:           "appr_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		ItemType:     t,
		ItemID:       itemID,
		RequestedBy:  actor.ID,
		Status:       models.ApprovalRequested,
		StaffRemarks: remarks,
		CreatedAt:    models.Timestamp(a.now()),
	}
	doc, err := models.ToDocument(approval)
	if err != nil {
		return nil, err
	}
	if err := a.store.Insert(ctx, data.CollectionApprovals, doc); err != nil {
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"operation":   "Request",
		"approval_id": approval.ID,
		"item_type":   t,
		"item_id":     itemID,
		"actor":       actor.ID,
	}).Info("Approval requested")
	return approval, nil
}

// Act records a Director's decision. Any state may move to any other;
// the latest decision wins and replaces earlier notes.
func (a *Approvals) Act(ctx context.Context, approvalID string, action models.ApprovalAction, actor models.Actor, notes *string) (*models.Approval, error) {
	if err := policy.Authorize(actor.Role, policy.ActOnApproval, policy.Resource{Kind: "approval"}); err != nil {
		return nil, err
	}
	status, err := action.Status()
	if err != nil {
		return nil, err
	}

	approvedBy := actor.ID
	approvedAt := models.Timestamp(a.now())
	partial := models.Document{
		"status":      string(status),
		"approved_by": approvedBy,
		"approved_at": approvedAt,
		"notes":       nil,
	}
	if notes != nil {
		partial["notes"] = *notes
	}

	n, err := a.store.Update(ctx, data.CollectionApprovals, approvalID, partial)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("approval", approvalID)
	}

	a.logger.WithFields(logrus.Fields{
		"operation":   "Act",
		"approval_id": approvalID,
		"status":      status,
		"actor":       actor.ID,
	}).Info("Approval updated")

	return a.get(ctx, approvalID)
}

// ResetAll deletes every approval and returns how many were removed.
func (a *Approvals) ResetAll(ctx context.Context, actor models.Actor) (int64, error) {
	if err := policy.Authorize(actor.Role, policy.ResetApprovals, policy.Resource{Kind: "approval"}); err != nil {
		return 0, err
	}
	n, err := a.store.DeleteMany(ctx, data.CollectionApprovals, nil)
	if err != nil {
		return 0, err
	}
	a.logger.WithFields(logrus.Fields{
		"operation": "ResetAll",
		"deleted":   n,
		"actor":     actor.ID,
	}).Warn("All approvals reset")
	return n, nil
}

// List returns approvals matching filter in creation order.
func (a *Approvals) List(ctx context.Context, actor models.Actor, filter models.ApprovalFilter) ([]models.Approval, error) {
	f := data.Filter{}
	if filter.ItemType != "" {
		if _, err := models.ParseItemType(string(filter.ItemType)); err != nil {
			return nil, err
		}
		f["item_type"] = string(filter.ItemType)
	}
	if filter.ItemID != "" {
		f["item_id"] = filter.ItemID
	}
	if filter.Status != "" {
		f["status"] = string(filter.Status)
	}

	docs, err := a.store.Find(ctx, data.CollectionApprovals, f, data.FindOptions{Limit: a.cap})
	if err != nil {
		return nil, err
	}
	approvals := make([]models.Approval, 0, len(docs))
	for _, doc := range docs {
		var ap models.Approval
		if err := models.DecodeDocument(doc, &ap); err != nil {
			a.logger.WithFields(logrus.Fields{
				"operation": "List",
				"id":        doc.ID(),
				"error":     err.Error(),
			}).Warn("Skipping malformed approval")
			continue
		}
		approvals = append(approvals, ap)
	}

	a.logger.WithFields(logrus.Fields{
		"operation": "List",
		"count":     len(approvals),
		"actor":     actor.ID,
	}).Debug("Listed approvals")
	return approvals, nil
}

func (a *Approvals) get(ctx context.Context, id string) (*models.Approval, error) {
	doc, err := data.FindByID(ctx, a.store, data.CollectionApprovals, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("approval", id)
	}
	var ap models.Approval
	if err := models.DecodeDocument(doc, &ap); err != nil {
		return nil, err
	}
	return &ap, nil
}
