// Package bulk moves records in and out of the console as CSV files staged
// in S3.
package bulk

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/apperr"
	"opsconsole/lib/clients"
	"opsconsole/lib/data"
	"opsconsole/lib/models"
	"opsconsole/lib/policy"
)

// DefaultURLExpiry is how long presigned links stay valid.
const DefaultURLExpiry = 15 * time.Minute

// csvContentType is the content type of every file this package writes.
const csvContentType = "text/csv"

// headerRows is added to a data row's index to get the row number a
// spreadsheet shows for it.
const headerRows = 2

// Target is one record kind that rows can be imported into and exported from.
type Target interface {
	Name() string
	Columns() []string
	InputColumns() []string
	ImportRow(ctx context.Context, actor models.Actor, row map[string]string) error
	Documents(ctx context.Context, filter data.Filter) ([]models.Document, error)
}

// Importer creates records from CSV files.
type Importer struct {
	Files     clients.S3ClientInterface
	Logger    *logrus.Logger
	URLExpiry time.Duration
}

// NewImporter creates an Importer over files, which may be nil when only
// Import is used.
func NewImporter(files clients.S3ClientInterface, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Importer{Files: files, Logger: logger, URLExpiry: DefaultURLExpiry}
}

// Import reads a CSV with a header row from r and creates one record per
// data row. A bad row is recorded in the result and the rest continue.
func (i *Importer) Import(ctx context.Context, actor models.Actor, target Target, r io.Reader) (*models.ImportResult, error) {
	if err := policy.Authorize(actor.Role, policy.ImportRecords, policy.Resource{Kind: target.Name()}); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.Invalid("file", "is empty")
	}
	if err != nil {
		return nil, apperr.Invalid("file", "could not be read: %v", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	result := &models.ImportResult{Errors: []models.ImportRowError{}}
	for index := 0; ; index++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNumber := index + headerRows
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, apperr.Invalid("file", "could not be read: %v", err)
			}
			result.Errors = append(result.Errors, models.ImportRowError{Row: rowNumber, Message: parseErr.Err.Error()})
			continue
		}
		if blank(record) {
			continue
		}

		row := make(map[string]string, len(header))
		for j, column := range header {
			if j < len(record) {
				row[column] = record[j]
			}
		}
		if err := target.ImportRow(ctx, actor, row); err != nil {
			result.Errors = append(result.Errors, models.ImportRowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	i.Logger.WithFields(logrus.Fields{
		"operation": "Import",
		"kind":      target.Name(),
		"imported":  result.Imported,
		"failed":    len(result.Errors),
		"actor":     actor.ID,
	}).Info("Bulk import completed")
	return result, nil
}

// ImportObject imports a CSV previously uploaded to key.
func (i *Importer) ImportObject(ctx context.Context, actor models.Actor, target Target, key string) (*models.ImportResult, error) {
	if err := policy.Authorize(actor.Role, policy.ImportRecords, policy.Resource{Kind: target.Name()}); err != nil {
		return nil, err
	}
	if i.Files == nil {
		return nil, fmt.Errorf("file storage is not configured")
	}
	exists, err := i.Files.ObjectExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("file", key)
	}
	body, err := i.Files.GetObject(ctx, key)
	if err != nil {
		i.Logger.WithFields(logrus.Fields{
			"operation": "ImportObject",
			"key":       key,
			"error":     err.Error(),
		}).Error("Failed to fetch import file")
		return nil, err
	}
	return i.Import(ctx, actor, target, bytes.NewReader(body))
}

// UploadURL returns a presigned PUT link for staging an import file.
func (i *Importer) UploadURL(ctx context.Context, actor models.Actor, target Target) (*models.FileResponse, error) {
	if err := policy.Authorize(actor.Role, policy.ImportRecords, policy.Resource{Kind: target.Name()}); err != nil {
		return nil, err
	}
	if i.Files == nil {
		return nil, fmt.Errorf("file storage is not configured")
	}
	key := fmt.Sprintf("imports/%s/%s.csv", target.Name(), uuid.New().String())
	url, err := i.Files.GenerateUploadURL(ctx, key, csvContentType, i.expiry())
	if err != nil {
		return nil, err
	}
	return &models.FileResponse{Key: key, URL: url, ExpiresIn: int(i.expiry().Seconds())}, nil
}

func (i *Importer) expiry() time.Duration {
	if i.URLExpiry <= 0 {
		return DefaultURLExpiry
	}
	return i.URLExpiry
}

func blank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
