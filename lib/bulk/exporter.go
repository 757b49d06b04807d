package bulk

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"opsconsole/lib/apperr"
	"opsconsole/lib/clients"
	"opsconsole/lib/lifecycle"
	"opsconsole/lib/models"
)

// Exporter writes CSV files to S3 and hands back presigned download links.
type Exporter struct {
	Files     clients.S3ClientInterface
	Logger    *logrus.Logger
	URLExpiry time.Duration
	Now       func() time.Time
}

// NewExporter creates an Exporter over files.
func NewExporter(files clients.S3ClientInterface, logger *logrus.Logger) *Exporter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Exporter{Files: files, Logger: logger, URLExpiry: DefaultURLExpiry, Now: time.Now}
}

// Export writes every stored record of target, derived fields refreshed,
// one row per record in the target's column order.
func (e *Exporter) Export(ctx context.Context, target Target) (*models.FileResponse, error) {
	docs, err := target.Documents(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound(target.Name()+" records", "")
	}

	columns := target.Columns()
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		row := make([]string, len(columns))
		for j, column := range columns {
			row[j] = cell(doc[column])
		}
		rows = append(rows, row)
	}

	body, err := encodeCSV(columns, rows)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("exports/%s/%s-%s.csv", target.Name(), e.now().Format(lifecycle.DateLayout), uuid.New().String())
	resp, err := e.publish(ctx, key, body)
	if err != nil {
		return nil, err
	}

	e.Logger.WithFields(logrus.Fields{
		"operation": "Export",
		"kind":      target.Name(),
		"rows":      len(rows),
		"key":       key,
	}).Info("Export written")
	return resp, nil
}

// Sample writes a header-only template listing the columns an import
// file may carry.
func (e *Exporter) Sample(ctx context.Context, target Target) (*models.FileResponse, error) {
	body, err := encodeCSV(target.InputColumns(), nil)
	if err != nil {
		return nil, err
	}
	return e.publish(ctx, fmt.Sprintf("samples/%s_sample.csv", target.Name()), body)
}

func (e *Exporter) publish(ctx context.Context, key string, body []byte) (*models.FileResponse, error) {
	if e.Files == nil {
		return nil, fmt.Errorf("file storage is not configured")
	}
	if err := e.Files.PutObject(ctx, key, csvContentType, body); err != nil {
		e.Logger.WithFields(logrus.Fields{
			"operation": "publish",
			"key":       key,
			"error":     err.Error(),
		}).Error("Failed to upload file")
		return nil, err
	}
	expiry := e.URLExpiry
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	url, err := e.Files.GenerateDownloadURL(ctx, key, expiry)
	if err != nil {
		return nil, err
	}
	return &models.FileResponse{Key: key, URL: url, ExpiresIn: int(expiry.Seconds())}, nil
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cell renders a stored value the way the importer reads it back.
func cell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			parts = append(parts, cell(p))
		}
		return strings.Join(parts, ", ")
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	}
}
