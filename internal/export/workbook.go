// Package export renders quotes as spreadsheet workbooks.
package export

import (
	"fmt"

	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/pkg/format"
	"github.com/xuri/excelize/v2"
)

const (
	// ScheduleSheet holds the quarter by quarter payouts.
	ScheduleSheet = "Schedule"
	// InputSheet holds the quote parameters.
	InputSheet = "Quote"
	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// FileName is the suggested download and attachment name.
	FileName = "payout-schedule.xlsx"
)

// amountFormat is the built-in "#,##0" number format.
const amountFormat = 3

// ScheduleWorkbook returns an .xlsx workbook with the schedule on one sheet
// and the quote parameters and verdict on another.
func ScheduleWorkbook(in quote.Input, result quote.Result, city string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		return nil, fmt.Errorf("failed to name schedule sheet: %w", err)
	}
	if _, err := f.NewSheet(InputSheet); err != nil {
		return nil, fmt.Errorf("failed to add quote sheet: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}

	if err := f.SetSheetRow(ScheduleSheet, "A1", &[]interface{}{"Quarter", "Amount (DKK)"}); err != nil {
		return nil, err
	}
	for i, entry := range result.Schedule {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ScheduleSheet, cell, &[]interface{}{entry.Quarter, entry.Amount}); err != nil {
			return nil, err
		}
	}
	totalRow := len(result.Schedule) + 2
	if err := f.SetSheetRow(ScheduleSheet, fmt.Sprintf("A%d", totalRow), &[]interface{}{"Total", result.TotalPayout}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ScheduleSheet, "B2", fmt.Sprintf("B%d", totalRow), amountStyle); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"Monthly payout (DKK)", in.MonthlyPayout},
		{"Lump sum payout (DKK)", in.LumpSumPayout},
		{"Duration", quote.DurationLabel(in.DurationQuarters)},
		{"Property value (DKK)", in.PropertyValue},
		{"Equity value (DKK)", in.EquityValue},
		{"Amortizing loan", format.YesNo(in.Amortizing)},
		{"Owner age", in.OwnerAge},
		{"Postal code", in.PostalCode},
		{"City", city},
		{"Total payout (DKK)", result.TotalPayout},
		{"Verdict", string(result.Verdict)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(InputSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(InputSheet, "A", "A", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// LeadAttachment renders the workbook for a lead notification. It satisfies
// lead.AttachmentFunc.
func LeadAttachment(sub lead.Submission) (lead.Attachment, error) {
	data, err := ScheduleWorkbook(sub.Input, sub.Result, sub.City)
	if err != nil {
		return lead.Attachment{}, err
	}
	return lead.Attachment{Name: FileName, ContentType: ContentType, Data: data}, nil
}
