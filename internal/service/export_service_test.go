package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"feldbeleg/internal/domain"
	"feldbeleg/internal/export"
	"feldbeleg/internal/port"
	"feldbeleg/internal/schema"
	"feldbeleg/mocks"
)

func completedTimesheetDoc(t *testing.T) domain.Document {
	t.Helper()
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	breakTime := 0.5
	ts := schema.Timesheet{
		Name:          "Tümmler Dirk",
		ProjectNumber: "V240045",
		Customer:      "Magua",
		City:          "Salzgitter",
		Land:          "DE",
		Lines: []schema.TimeLine{{
			Date:        &date,
			StartTime:   "06:45:00",
			EndTime:     "16:00:00",
			BreakTime:   &breakTime,
			Description: "Montage",
		}},
	}
	payload, err := json.Marshal(map[string]any{"invoice_info": ts})
	require.NoError(t, err)

	return domain.Document{
		ID:          uuid.New(),
		InvoiceType: domain.InvoiceTypeTimesheet,
		Status:      domain.ExtractionStatusCompleted,
		InvoiceInfo: payload,
	}
}

func TestExportMonthWritesArtifactsAndEmails(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	storage := new(mocks.MockObjectStorage)
	sender := new(mocks.MockEmailSender)

	doc := completedTimesheetDoc(t)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f port.DocumentListFilter) bool {
		return f.Status == domain.ExtractionStatusCompleted && f.From != nil && f.To != nil
	}), 0, 200).Return([]domain.Document{doc}, 1, nil)

	var uploadedCSV []byte
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.ContentType == "text/csv"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(port.UploadInput)
		data, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		uploadedCSV = data
	}).Return(&port.UploadOutput{}, nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.ContentType != "text/csv"
	})).Return(&port.UploadOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, "feldbeleg-test", mock.Anything, int64(900)).Return("https://example.com/signed", nil)

	sender.On("SendExportEmail", mock.Anything, "backoffice@example.com", mock.Anything, mock.Anything,
		mock.MatchedBy(func(atts []port.Attachment) bool { return len(atts) == 2 })).Return(nil)

	svc := NewExportService(repo, storage, sender, "feldbeleg-test", 900, "Monatsexport")

	result, err := svc.ExportMonth(context.Background(), 2026, time.March, "backoffice@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Documents)
	assert.Equal(t, 1, result.Timesheets)
	assert.Equal(t, 0, result.Expenses)
	assert.Equal(t, "backoffice@example.com", result.EmailedTo)
	assert.Contains(t, result.CSVKey, "exports/2026/03/")
	assert.Equal(t, "https://example.com/signed", result.CSVURL)

	require.True(t, bytes.HasPrefix(uploadedCSV, export.BOM))
	csvText := string(bytes.TrimPrefix(uploadedCSV, export.BOM))
	assert.Contains(t, csvText, "Stundenzettel ID")
	assert.Contains(t, csvText, "V240045: Magua")
	assert.Contains(t, csvText, "12.03.2026 06:45:00")

	repo.AssertExpectations(t)
	storage.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func completedExpenseDoc(t *testing.T, name, originalName string) domain.Document {
	t.Helper()
	e := schema.Expense{
		Name:          name,
		ProjectNumber: "V240045",
		Currency:      "EUR",
		Lines: []schema.ExpenseLine{{
			Title:         schema.TitleHotel,
			Amount:        412.80,
			PaymentMethod: "Firmenkreditkarte",
		}},
	}
	payload, err := json.Marshal(map[string]any{"invoice_info": e})
	require.NoError(t, err)

	return domain.Document{
		ID:           uuid.New(),
		OriginalName: originalName,
		InvoiceType:  domain.InvoiceTypeExpense,
		Status:       domain.ExtractionStatusCompleted,
		InvoiceInfo:  payload,
	}
}

func TestExportMonthPairsTimesheetWithExpenseSheet(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	storage := new(mocks.MockObjectStorage)

	ts := completedTimesheetDoc(t)
	ts.OriginalName = "tuemmler_maerz_1.pdf"
	exp := completedExpenseDoc(t, "Tümmler Dirk", "tuemmler_maerz_2.pdf")
	repo.On("List", mock.Anything, mock.Anything, 0, 200).Return([]domain.Document{ts, exp}, 2, nil)

	var uploadedXLSX []byte
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.ContentType != "text/csv"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(port.UploadInput)
		data, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		uploadedXLSX = data
	}).Return(&port.UploadOutput{}, nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.ContentType == "text/csv"
	})).Return(&port.UploadOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("presign disabled"))

	svc := NewExportService(repo, storage, nil, "feldbeleg-test", 900, "Monatsexport")

	result, err := svc.ExportMonth(context.Background(), 2026, time.March, "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 1, result.Timesheets)
	assert.Equal(t, 1, result.Expenses)

	// Both pages of the form land on one sheet, timesheet block on top and
	// the expense block below it.
	wb, err := excelize.OpenReader(bytes.NewReader(uploadedXLSX))
	require.NoError(t, err)
	defer wb.Close()
	require.Equal(t, []string{"Tümmler Dirk"}, wb.GetSheetList())

	spesen, err := wb.GetCellValue("Tümmler Dirk", "A10")
	require.NoError(t, err)
	assert.Equal(t, "Spesen (EUR)", spesen)
}

func TestPairRecordsFallsBackToEmployeeName(t *testing.T) {
	ts := &schema.Timesheet{Name: "Tümmler Dirk"}
	exp := &schema.Expense{Name: "Tümmler Dirk"}
	other := &schema.Expense{Name: "Behrens Jens"}

	records := pairRecords(
		[]exportSide{{key: "stundenzettel", name: ts.Name, rec: export.MonthlyRecord{Timesheet: ts}}},
		[]exportSide{
			{key: "spesen_behrens", name: other.Name, rec: export.MonthlyRecord{Expense: other}},
			{key: "spesen_tuemmler", name: exp.Name, rec: export.MonthlyRecord{Expense: exp}},
		},
	)

	require.Len(t, records, 2)
	assert.Same(t, ts, records[0].Timesheet)
	assert.Same(t, exp, records[0].Expense)
	assert.Nil(t, records[1].Timesheet)
	assert.Same(t, other, records[1].Expense)
}

func TestPairKeyDropsExtensionAndPageMarker(t *testing.T) {
	assert.Equal(t, "tuemmler_maerz", pairKey("Tuemmler_Maerz_1.pdf"))
	assert.Equal(t, "tuemmler_maerz", pairKey("tuemmler_maerz_2.PDF"))
	assert.Equal(t, "scan 0042", pairKey("Scan 0042.jpeg"))
}

func TestExportMonthSkipsUndecodableDocuments(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	storage := new(mocks.MockObjectStorage)

	broken := domain.Document{
		ID:          uuid.New(),
		InvoiceType: domain.InvoiceTypeTimesheet,
		Status:      domain.ExtractionStatusCompleted,
		InvoiceInfo: json.RawMessage(`not json`),
	}
	repo.On("List", mock.Anything, mock.Anything, 0, 200).Return([]domain.Document{broken}, 1, nil)
	storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("presign disabled"))

	svc := NewExportService(repo, storage, nil, "feldbeleg-test", 900, "Monatsexport")

	result, err := svc.ExportMonth(context.Background(), 2026, time.March, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Documents)
	assert.Equal(t, 0, result.Timesheets)
}
