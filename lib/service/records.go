// Package service implements the console's record and user operations on top
// of a data.RecordStore, applying the role policy and lifecycle derivations.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"opsconsole/lib/apperr"
	"opsconsole/lib/data"
	"opsconsole/lib/lifecycle"
	"opsconsole/lib/models"
	"opsconsole/lib/policy"
)

// Clock returns the current time in the console's time zone.
type Clock func() time.Time

// Options carries what every service shares.
type Options struct {
	Logger   *logrus.Logger
	Now      Clock
	FetchCap int
	Org      string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logrus.New()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.FetchCap <= 0 {
		o.FetchCap = data.DefaultFetchCap
	}
	return o
}

// ListQuery filters and orders a record listing. Status and Department
// map onto the kind's status and department fields.
type ListQuery struct {
	Status     string
	Department string
	SortBy     string
	SortOrder  string
}

type validator interface {
	Validate() error
}

// RecordService manages one kind of record, T being its model type.
type RecordService[T any] struct {
	kind   Kind
	store  data.RecordStore
	logger *logrus.Logger
	now    Clock
	cap    int
	org    string
}

// NewRecordService binds kind to store.
func NewRecordService[T any](kind Kind, store data.RecordStore, opts Options) *RecordService[T] {
	opts = opts.withDefaults()
	return &RecordService[T]{
		kind:   kind,
		store:  store,
		logger: opts.Logger,
		now:    opts.Now,
		cap:    opts.FetchCap,
		org:    opts.Org,
	}
}

// Kind returns the kind this service manages.
func (s *RecordService[T]) Kind() Kind { return s.kind }

// Name returns the kind's singular name.
func (s *RecordService[T]) Name() string { return s.kind.Name }

// Columns returns the kind's file column order.
func (s *RecordService[T]) Columns() []string { return s.kind.Columns }

// InputColumns returns the columns an import file may carry.
func (s *RecordService[T]) InputColumns() []string { return s.kind.InputColumns() }

// Create stores a new record built from input, one of the Create*Request types.
func (s *RecordService[T]) Create(ctx context.Context, actor models.Actor, input interface{}) (*T, error) {
	fields, err := models.ToDocument(input)
	if err != nil {
		return nil, apperr.Invalid("", "malformed %s: %v", s.kind.Name, err)
	}
	return s.create(ctx, actor, fields)
}

func (s *RecordService[T]) create(ctx context.Context, actor models.Actor, fields models.Document) (*T, error) {
	if err := policy.Authorize(actor.Role, policy.CreateRecord, policy.Resource{Kind: s.kind.Name}); err != nil {
		return nil, err
	}

	now := s.now()
	doc := s.kind.Defaults.Clone()
	derived := s.kind.outputs()
	for k, v := range fields {
		if k == "id" || k == "created_at" || k == "org" || derived[k] {
			continue
		}
		doc[k] = v
	}
	if s.kind.HasOrg {
		doc["org"] = s.org
	}
	if s.kind.HasApprover {
		if v, _ := doc["approver_user_id"].(string); v == "" {
			doc["approver_user_id"] = actor.ID
		}
	}
	doc["id"] = NewID(s.kind.IDPrefix)
	doc["created_at"] = models.Timestamp(now)

	if err := lifecycle.Refresh(doc, s.kind.Derivations, now); err != nil {
		return nil, unwrapDerivation(err)
	}
	record, err := s.decodeValid(doc)
	if err != nil {
		return nil, err
	}
	clean, err := models.ToDocument(record)
	if err != nil {
		return nil, apperr.Invalid("", "malformed %s: %v", s.kind.Name, err)
	}

	if err := s.store.Insert(ctx, s.kind.Collection, clean); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"operation": "Create",
		"kind":      s.kind.Name,
		"id":        clean.ID(),
		"actor":     actor.ID,
	}).Info("Record created")
	return record, nil
}

// List returns the kind's records with derived fields recomputed for today.
func (s *RecordService[T]) List(ctx context.Context, q ListQuery) ([]T, error) {
	if err := validSortOrder(q.SortOrder); err != nil {
		return nil, err
	}

	filter := data.Filter{}
	if q.Status != "" && s.kind.StatusField != "" {
		filter[s.kind.StatusField] = q.Status
	}
	if q.Department != "" && s.kind.DepartmentField != "" {
		filter[s.kind.DepartmentField] = q.Department
	}

	docs, err := s.Documents(ctx, filter)
	if err != nil {
		return nil, err
	}
	SortDocuments(docs, q.SortBy, q.SortOrder)

	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		var record T
		if err := models.DecodeDocument(doc, &record); err != nil {
			s.logger.WithFields(logrus.Fields{
				"operation": "List",
				"kind":      s.kind.Name,
				"id":        doc.ID(),
				"error":     err.Error(),
			}).Warn("Skipping malformed record")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Documents returns stored documents matching filter, bounded by the fetch
// cap, with derived fields recomputed. Records whose dates cannot be parsed
// keep their stored values.
func (s *RecordService[T]) Documents(ctx context.Context, filter data.Filter) ([]models.Document, error) {
	docs, err := s.store.Find(ctx, s.kind.Collection, filter, data.FindOptions{Limit: s.cap})
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, doc := range docs {
		if err := lifecycle.Refresh(doc, s.kind.Derivations, now); err != nil {
			s.logger.WithFields(logrus.Fields{
				"operation": "Documents",
				"kind":      s.kind.Name,
				"id":        doc.ID(),
				"error":     err.Error(),
			}).Warn("Could not refresh derived fields")
		}
	}
	return docs, nil
}

// Get returns one record with derived fields recomputed.
func (s *RecordService[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := data.FindByID(ctx, s.store, s.kind.Collection, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound(s.kind.Name, id)
	}
	if err := lifecycle.Refresh(doc, s.kind.Derivations, s.now()); err != nil {
		s.logger.WithFields(logrus.Fields{
			"operation": "Get",
			"kind":      s.kind.Name,
			"id":        id,
			"error":     err.Error(),
		}).Warn("Could not refresh derived fields")
	}
	var record T
	if err := models.DecodeDocument(doc, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update applies patch, one of the Update*Request types, to the record with
// the given id. Derived fields are recomputed in the same write whenever the
// patch touches one of their inputs.
func (s *RecordService[T]) Update(ctx context.Context, actor models.Actor, id string, patch interface{}) (*T, error) {
	if err := policy.Authorize(actor.Role, policy.UpdateRecord, policy.Resource{Kind: s.kind.Name}); err != nil {
		return nil, err
	}

	partial, err := models.ToDocument(patch)
	if err != nil {
		return nil, apperr.Invalid("", "malformed %s update: %v", s.kind.Name, err)
	}
	derived := s.kind.outputs()
	for k := range partial {
		if k == "id" || k == "created_at" || k == "org" || derived[k] {
			delete(partial, k)
		}
	}
	if len(partial) == 0 {
		return nil, apperr.Invalid("", "no updatable fields supplied")
	}

	existing, err := data.FindByID(ctx, s.store, s.kind.Collection, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound(s.kind.Name, id)
	}

	now := s.now()
	if err := lifecycle.Derive(partial, existing, s.kind.Derivations, now); err != nil {
		return nil, unwrapDerivation(err)
	}

	merged := existing.Clone()
	for k, v := range partial {
		merged[k] = v
	}
	// The response reflects today's status even when the patch left the
	// stored one untouched.
	if err := lifecycle.Refresh(merged, s.kind.Derivations, now); err != nil {
		s.logger.WithFields(logrus.Fields{
			"operation": "Update",
			"kind":      s.kind.Name,
			"id":        id,
			"error":     err.Error(),
		}).Warn("Could not refresh derived fields")
	}
	record, err := s.decodeValid(merged)
	if err != nil {
		return nil, err
	}

	n, err := s.store.Update(ctx, s.kind.Collection, id, partial)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound(s.kind.Name, id)
	}

	s.logger.WithFields(logrus.Fields{
		"operation": "Update",
		"kind":      s.kind.Name,
		"id":        id,
		"fields":    len(partial),
		"actor":     actor.ID,
	}).Info("Record updated")
	return record, nil
}

// Delete removes the record with the given id.
func (s *RecordService[T]) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := policy.Authorize(actor.Role, policy.DeleteRecord, policy.Resource{Kind: s.kind.Name}); err != nil {
		return err
	}
	n, err := s.store.Delete(ctx, s.kind.Collection, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(s.kind.Name, id)
	}

	s.logger.WithFields(logrus.Fields{
		"operation": "Delete",
		"kind":      s.kind.Name,
		"id":        id,
		"actor":     actor.ID,
	}).Info("Record deleted")
	return nil
}

// ActiveByDepartment returns id, name and department of every active record
// in department.
func (s *RecordService[T]) ActiveByDepartment(ctx context.Context, department string) ([]models.Document, error) {
	filter := data.Filter{s.kind.DepartmentField: department}
	if s.kind.StatusField != "" {
		filter[s.kind.StatusField] = s.kind.ActiveStatus
	}
	return s.store.Find(ctx, s.kind.Collection, filter, data.FindOptions{
		Projection: []string{"id", s.kind.NameField, s.kind.DepartmentField},
		Limit:      s.cap,
	})
}

// ImportRow creates one record from a row of text cells keyed by column.
// Cells are converted to the model's field types; empty cells are treated
// as absent.
func (s *RecordService[T]) ImportRow(ctx context.Context, actor models.Actor, row map[string]string) error {
	fields, err := coerceRow[T](row)
	if err != nil {
		return err
	}
	_, err = s.create(ctx, actor, fields)
	return err
}

func (s *RecordService[T]) decodeValid(doc models.Document) (*T, error) {
	var record T
	if err := models.DecodeDocument(doc, &record); err != nil {
		return nil, err
	}
	if v, ok := any(&record).(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &record, nil
}

// unwrapDerivation returns the typed error a derivation failed with, so
// callers see InvalidDateError rather than a wrapped string.
func unwrapDerivation(err error) error {
	var dateErr *apperr.InvalidDateError
	var validationErr *apperr.ValidationError
	switch {
	case errors.As(err, &dateErr):
		return dateErr
	case errors.As(err, &validationErr):
		return validationErr
	default:
		return err
	}
}

// SortDocuments orders docs by field, ascending unless order is "desc".
// Documents missing the field sort as an empty string. Numbers compare
// numerically; any other mix compares by text.
func SortDocuments(docs []models.Document, field, order string) {
	if field == "" {
		return
	}
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareValues(docs[i][field], docs[j][field])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b interface{}) int {
	if a == nil {
		a = ""
	}
	if b == nil {
		b = ""
	}
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func validSortOrder(order string) error {
	switch strings.ToLower(order) {
	case "", "asc", "desc":
		return nil
	}
	return apperr.Invalid("sort_order", "must be asc or desc")
}

// coerceRow converts text cells into the JSON types of T's fields.
func coerceRow[T any](row map[string]string) (models.Document, error) {
	kinds := jsonFieldKinds(reflect.TypeOf((*T)(nil)).Elem())
	doc := models.Document{}
	for column, raw := range row {
		column = strings.TrimSpace(column)
		value := strings.TrimSpace(raw)
		kind, known := kinds[column]
		if !known || value == "" {
			continue
		}
		switch kind {
		case reflect.Int, reflect.Int32, reflect.Int64:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f != float64(int64(f)) {
				return nil, apperr.Invalid(column, "must be a whole number")
			}
			doc[column] = int64(f)
		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
			if err != nil {
				return nil, apperr.Invalid(column, "must be a number")
			}
			doc[column] = f
		case reflect.Slice:
			parts := []interface{}{}
			for _, p := range strings.Split(value, ",") {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
			doc[column] = parts
		default:
			doc[column] = value
		}
	}
	return doc, nil
}

func jsonFieldKinds(t reflect.Type) map[string]reflect.Kind {
	kinds := map[string]reflect.Kind{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		kinds[name] = ft.Kind()
	}
	return kinds
}
