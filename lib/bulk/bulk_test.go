package bulk

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsconsole/lib/apperr"
	"opsconsole/lib/data"
	"opsconsole/lib/models"
	"opsconsole/lib/service"
)

// MockS3Client is an in-memory stand-in for clients.S3ClientInterface
type MockS3Client struct {
	Objects      map[string][]byte
	ContentTypes map[string]string
}

func NewMockS3Client() *MockS3Client {
	return &MockS3Client{Objects: map[string][]byte{}, ContentTypes: map[string]string{}}
}

func (m *MockS3Client) GenerateUploadURL(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return "https://files.test/" + key + "?upload", nil
}

func (m *MockS3Client) GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

func (m *MockS3Client) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	m.Objects[key] = body
	m.ContentTypes[key] = contentType
	return nil
}

func (m *MockS3Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	return m.Objects[key], nil
}

func (m *MockS3Client) DeleteObject(ctx context.Context, key string) error {
	delete(m.Objects, key)
	return nil
}

func (m *MockS3Client) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, ok := m.Objects[key]
	return ok, nil
}

var (
	admin    = models.Actor{ID: "user_admin", Role: models.RoleAdmin}
	director = models.Actor{ID: "user_director", Role: models.RoleDirector}
	staff    = models.Actor{ID: "user_staff", Role: models.RoleStaff}
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func contractorTarget() *service.RecordService[models.Contractor] {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	return service.NewRecordService[models.Contractor](service.ContractorKind, data.NewMemoryStore(), service.Options{
		Logger: quietLogger(),
		Now:    func() time.Time { return now },
	})
}

const contractorCSV = `name,doj,start_date,tenure_months,dob,pan,mobile,personal_email,department,monthly_retainer_inr
Meera,2024-12-01,2024-12-01,6,1994-05-20,ABCDE1234F,9999999999,meera@mail.test,Content,"45,000"
Arjun,2024-12-01,2024-12-01,6,1992-01-10,ABCDE1234G,9999999998,arjun@mail.test,Radio,30000
Kavya,2024-11-01,2024-11-01,12,1990-08-02,ABCDE1234H,9999999997,kavya@mail.test,SEO,52000
,,,,,,,,,
Rohan,2024-10-01,2024-10-01,3,1995-02-14,ABCDE1234J,9999999996,rohan@mail.test,PPC,41000
`

func TestImport_BadRowIsReportedAndSkipped(t *testing.T) {
	// Arrange
	target := contractorTarget()
	importer := NewImporter(nil, quietLogger())

	// Act
	result, err := importer.Import(context.Background(), director, target, strings.NewReader(contractorCSV))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "department")
	assert.True(t, strings.HasPrefix(result.Messages()[0], "Row 3: "))

	stored, err := target.List(context.Background(), service.ListQuery{SortBy: "name"})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "Kavya", stored[0].Name)
	assert.Equal(t, "2025-11-01", stored[0].EndDate)
	assert.Equal(t, director.ID, stored[0].ApproverUserID)
}

func TestImport_RoleAndFileChecks(t *testing.T) {
	importer := NewImporter(nil, quietLogger())
	ctx := context.Background()

	_, err := importer.Import(ctx, staff, contractorTarget(), strings.NewReader(contractorCSV))
	assert.True(t, apperr.IsPermissionDenied(err))

	_, err = importer.Import(ctx, admin, contractorTarget(), strings.NewReader(""))
	assert.True(t, apperr.IsValidation(err))
}

func TestImportObject(t *testing.T) {
	files := NewMockS3Client()
	importer := NewImporter(files, quietLogger())
	ctx := context.Background()

	upload, err := importer.UploadURL(ctx, admin, contractorTarget())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.Key, "imports/contractor/"))
	assert.Equal(t, 900, upload.ExpiresIn)

	_, err = importer.ImportObject(ctx, admin, contractorTarget(), upload.Key)
	assert.True(t, apperr.IsNotFound(err))

	files.Objects[upload.Key] = []byte("\ufeff" + contractorCSV)
	result, err := importer.ImportObject(ctx, admin, contractorTarget(), upload.Key)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)

	_, err = importer.UploadURL(ctx, staff, contractorTarget())
	assert.True(t, apperr.IsPermissionDenied(err))
}

func TestExport_WritesEveryColumn(t *testing.T) {
	// Arrange
	files := NewMockS3Client()
	target := contractorTarget()
	ctx := context.Background()
	_, err := NewImporter(nil, quietLogger()).Import(ctx, admin, target, strings.NewReader(contractorCSV))
	require.NoError(t, err)
	exporter := NewExporter(files, quietLogger())
	exporter.Now = func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }

	// Act
	resp, err := exporter.Export(ctx, target)

	// Assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "exports/contractor/2025-01-02-"))
	assert.Equal(t, "https://files.test/"+resp.Key, resp.URL)
	assert.Equal(t, "text/csv", files.ContentTypes[resp.Key])

	records, err := csv.NewReader(strings.NewReader(string(files.Objects[resp.Key]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, models.ContractorColumns, records[0])
	row := map[string]string{}
	for i, column := range records[0] {
		row[column] = records[1][i]
	}
	assert.Equal(t, "Meera", row["name"])
	assert.Equal(t, "45000", row["monthly_retainer_inr"])
	assert.Equal(t, "2025-06-01", row["end_date"])
	assert.Equal(t, "Live", row["agreement_status"])
}

func TestExport_EmptyIsNotFound(t *testing.T) {
	exporter := NewExporter(NewMockS3Client(), quietLogger())

	_, err := exporter.Export(context.Background(), contractorTarget())

	assert.True(t, apperr.IsNotFound(err))
}

func TestSample_HeaderOnly(t *testing.T) {
	files := NewMockS3Client()
	exporter := NewExporter(files, quietLogger())

	resp, err := exporter.Sample(context.Background(), contractorTarget())

	require.NoError(t, err)
	assert.Equal(t, "samples/contractor_sample.csv", resp.Key)
	records, err := csv.NewReader(strings.NewReader(string(files.Objects[resp.Key]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "tenure_months")
	assert.NotContains(t, records[0], "id")
	assert.NotContains(t, records[0], "end_date")
	assert.NotContains(t, records[0], "agreement_status")
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", cell(nil))
	assert.Equal(t, "12.5", cell(12.5))
	assert.Equal(t, "Blog, Newsletter", cell([]interface{}{"Blog", "Newsletter"}))
	assert.Equal(t, "true", cell(true))
}
