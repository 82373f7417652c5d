package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"feldbeleg/internal/domain"
	"feldbeleg/internal/export"
	"feldbeleg/internal/port"
)

// ExportResult describes the artifacts produced by a monthly export run.
type ExportResult struct {
	CSVKey      string `json:"csv_key"`
	WorkbookKey string `json:"workbook_key"`
	CSVURL      string `json:"csv_url,omitempty"`
	WorkbookURL string `json:"workbook_url,omitempty"`
	Documents   int    `json:"documents"`
	Timesheets  int    `json:"timesheets"`
	Expenses    int    `json:"expenses"`
	EmailedTo   string `json:"emailed_to,omitempty"`
}

// ExportService assembles monthly EGW and workbook exports from completed
// documents.
type ExportService interface {
	ExportMonth(ctx context.Context, year int, month time.Month, emailTo string) (*ExportResult, error)
}

type exportService struct {
	docRepo port.DocumentRepository
	storage port.ObjectStorage
	sender  port.EmailSender

	bucket        string
	presignExpiry int64
	subjectPrefix string
}

// NewExportService creates a new ExportService implementation.
func NewExportService(docRepo port.DocumentRepository, storage port.ObjectStorage, sender port.EmailSender, bucket string, presignExpiry int64, subjectPrefix string) ExportService {
	return &exportService{
		docRepo:       docRepo,
		storage:       storage,
		sender:        sender,
		bucket:        bucket,
		presignExpiry: presignExpiry,
		subjectPrefix: subjectPrefix,
	}
}

// invoiceInfoEnvelope mirrors the persisted shape of a validated document.
type invoiceInfoEnvelope struct {
	InvoiceInfo json.RawMessage `json:"invoice_info"`
}

func (s *exportService) ExportMonth(ctx context.Context, year int, month time.Month, emailTo string) (*ExportResult, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	records, total, err := s.collectRecords(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var csvBuf bytes.Buffer
	if _, err := csvBuf.Write(export.BOM); err != nil {
		return nil, fmt.Errorf("exportService.ExportMonth: %w", err)
	}
	writer := export.NewEGWWriter(&csvBuf)
	if err := writer.WriteHeader(); err != nil {
		return nil, fmt.Errorf("exportService.ExportMonth: %w", err)
	}

	result := &ExportResult{Documents: total}
	for _, rec := range records {
		if rec.Timesheet != nil {
			result.Timesheets++
			if err := writer.WriteTimesheet(rec.Timesheet); err != nil {
				return nil, fmt.Errorf("exportService.ExportMonth: %w", err)
			}
		}
		if rec.Expense != nil {
			result.Expenses++
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("exportService.ExportMonth: %w", err)
	}

	workbook, err := export.BuildWorkbook(records)
	if err != nil {
		return nil, fmt.Errorf("exportService.ExportMonth: %w", err)
	}
	var xlsxBuf bytes.Buffer
	if err := workbook.Write(&xlsxBuf); err != nil {
		return nil, fmt.Errorf("exportService.ExportMonth: %w", err)
	}

	now := time.Now().UTC()
	csvName := export.EGWFilename(now)
	xlsxName := fmt.Sprintf("monthly_report_%04d_%02d.xlsx", year, int(month))
	prefix := fmt.Sprintf("exports/%04d/%02d", year, int(month))
	result.CSVKey = fmt.Sprintf("%s/%s", prefix, csvName)
	result.WorkbookKey = fmt.Sprintf("%s/%s", prefix, xlsxName)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         result.CSVKey,
		Body:        bytes.NewReader(csvBuf.Bytes()),
		ContentType: "text/csv",
	}); err != nil {
		return nil, fmt.Errorf("exportService.ExportMonth: uploading csv: %w", err)
	}
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         result.WorkbookKey,
		Body:        bytes.NewReader(xlsxBuf.Bytes()),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}); err != nil {
		return nil, fmt.Errorf("exportService.ExportMonth: uploading workbook: %w", err)
	}

	if url, err := s.storage.GetPresignedURL(ctx, s.bucket, result.CSVKey, s.presignExpiry); err == nil {
		result.CSVURL = url
	}
	if url, err := s.storage.GetPresignedURL(ctx, s.bucket, result.WorkbookKey, s.presignExpiry); err == nil {
		result.WorkbookURL = url
	}

	if emailTo != "" && s.sender != nil {
		subject := fmt.Sprintf("%s %04d-%02d", s.subjectPrefix, year, int(month))
		body := fmt.Sprintf("Monthly export for %04d-%02d: %d documents (%d timesheets, %d expense reports).",
			year, int(month), result.Documents, result.Timesheets, result.Expenses)
		attachments := []port.Attachment{
			{FileName: csvName, ContentType: "text/csv", Data: csvBuf.Bytes()},
			{FileName: xlsxName, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: xlsxBuf.Bytes()},
		}
		if err := s.sender.SendExportEmail(ctx, emailTo, subject, body, attachments); err != nil {
			log.Printf("exportService.ExportMonth: sending export email to %s: %v", emailTo, err)
		} else {
			result.EmailedTo = emailTo
		}
	}

	log.Printf("exportService.ExportMonth: exported %d documents for %04d-%02d", result.Documents, year, int(month))
	return result, nil
}

// exportSide is one decoded document awaiting pairing.
type exportSide struct {
	key  string
	name string
	rec  export.MonthlyRecord
	used bool
}

// collectRecords pages through completed documents in the window, decodes
// their validated payloads and pairs each timesheet with the expense sheet
// of the same assignment.
func (s *exportService) collectRecords(ctx context.Context, from, to time.Time) ([]export.MonthlyRecord, int, error) {
	const pageSize = 200
	filter := port.DocumentListFilter{
		Status: domain.ExtractionStatusCompleted,
		From:   &from,
		To:     &to,
	}

	var timesheets, expenses []exportSide
	total := 0
	for offset := 0; ; offset += pageSize {
		docs, _, err := s.docRepo.List(ctx, filter, offset, pageSize)
		if err != nil {
			return nil, 0, fmt.Errorf("exportService.collectRecords: %w", err)
		}
		if len(docs) == 0 {
			break
		}
		for i := range docs {
			rec, ok := decodeRecord(&docs[i])
			if !ok {
				continue
			}
			side := exportSide{key: pairKey(docs[i].OriginalName), rec: rec}
			switch {
			case rec.Timesheet != nil:
				side.name = rec.Timesheet.Name
				timesheets = append(timesheets, side)
			case rec.Expense != nil:
				side.name = rec.Expense.Name
				expenses = append(expenses, side)
			default:
				continue
			}
			total++
		}
		if len(docs) < pageSize {
			break
		}
	}
	return pairRecords(timesheets, expenses), total, nil
}

// pairRecords joins timesheets with expense sheets, preferring a shared
// file-name stem and falling back to the resolved employee name. Documents
// left without a partner export single-sided.
func pairRecords(timesheets, expenses []exportSide) []export.MonthlyRecord {
	records := make([]export.MonthlyRecord, 0, len(timesheets)+len(expenses))
	pair := func(ts *exportSide, match func(*exportSide) bool) {
		for j := range expenses {
			e := &expenses[j]
			if !e.used && match(e) {
				ts.rec.Expense = e.rec.Expense
				ts.used = true
				e.used = true
				return
			}
		}
	}
	for i := range timesheets {
		ts := &timesheets[i]
		if ts.key != "" {
			pair(ts, func(e *exportSide) bool { return e.key == ts.key })
		}
	}
	for i := range timesheets {
		ts := &timesheets[i]
		if !ts.used && ts.name != "" {
			pair(ts, func(e *exportSide) bool { return e.name == ts.name })
		}
	}
	for i := range timesheets {
		records = append(records, timesheets[i].rec)
	}
	for i := range expenses {
		if !expenses[i].used {
			records = append(records, expenses[i].rec)
		}
	}
	return records
}

// pairKey reduces a scanned file name to the stem both pages of one form
// share: extension and a trailing page marker ("_1", "-2", " 2") drop.
func pairKey(name string) string {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	stem = strings.TrimSpace(stem)
	if len(stem) >= 2 {
		last := stem[len(stem)-1]
		sep := stem[len(stem)-2]
		if (last == '1' || last == '2') && (sep == '_' || sep == '-' || sep == ' ') {
			stem = strings.TrimSpace(stem[:len(stem)-2])
		}
	}
	return stem
}

func decodeRecord(doc *domain.Document) (export.MonthlyRecord, bool) {
	var envelope invoiceInfoEnvelope
	if err := json.Unmarshal(doc.InvoiceInfo, &envelope); err != nil || len(envelope.InvoiceInfo) == 0 {
		log.Printf("exportService.decodeRecord: document %s has no usable payload", doc.ID)
		return export.MonthlyRecord{}, false
	}

	rec := export.MonthlyRecord{}
	switch doc.InvoiceType {
	case domain.InvoiceTypeTimesheet:
		if err := json.Unmarshal(envelope.InvoiceInfo, &rec.Timesheet); err != nil {
			log.Printf("exportService.decodeRecord: document %s: %v", doc.ID, err)
			return export.MonthlyRecord{}, false
		}
	case domain.InvoiceTypeExpense:
		if err := json.Unmarshal(envelope.InvoiceInfo, &rec.Expense); err != nil {
			log.Printf("exportService.decodeRecord: document %s: %v", doc.ID, err)
			return export.MonthlyRecord{}, false
		}
	default:
		// Receipts are kept for records but have no monthly export shape.
		return export.MonthlyRecord{}, false
	}
	return rec, true
}
