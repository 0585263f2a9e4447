package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/pkg/testutil"
	"github.com/xuri/excelize/v2"
)

func TestScheduleWorkbook(t *testing.T) {
	in := quote.Input{
		MonthlyPayout:    5000,
		LumpSumPayout:    100000,
		DurationQuarters: 20,
		PropertyValue:    5000000,
		EquityValue:      3500000,
		Amortizing:       true,
		OwnerAge:         67,
		PostalCode:       "8000",
	}
	result, err := quote.Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	data, err := ScheduleWorkbook(in, result, "Aarhus C")
	if err != nil {
		t.Fatalf("ScheduleWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != ScheduleSheet || sheets[1] != InputSheet {
		t.Fatalf("GetSheetList() = %v", sheets)
	}

	raw := excelize.Options{RawCellValue: true}
	checks := map[string]string{
		"A1":  "Quarter",
		"A2":  "Q1",
		"B2":  "115000",
		"A21": "Q20",
		"B21": "15000",
		"A22": "Total",
		"B22": "385000",
	}
	for cell, expected := range checks {
		got, err := f.GetCellValue(ScheduleSheet, cell, raw)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", cell, err)
		}
		if got != expected {
			t.Errorf("%s = %q, expected %q", cell, got, expected)
		}
	}

	rows, err := f.GetRows(InputSheet, raw)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	found := make(map[string]string)
	for _, row := range rows {
		if len(row) >= 2 {
			found[row[0]] = row[1]
		}
	}
	expected := map[string]string{
		"Duration":        "5 år",
		"City":            "Aarhus C",
		"Verdict":         "High",
		"Amortizing loan": "Yes",
		"Owner age":       fmt.Sprint(67),
	}
	for label, value := range expected {
		if found[label] != value {
			t.Errorf("quote sheet %s = %q, expected %q", label, found[label], value)
		}
	}
}

func TestLeadAttachment(t *testing.T) {
	in := testutil.SampleInput()
	result, err := quote.Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	contact, err := lead.Validate(testutil.SampleDraft())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	att, err := LeadAttachment(lead.Submission{Input: in, Result: result, City: "Aarhus C", Contact: contact})
	if err != nil {
		t.Fatalf("LeadAttachment() error = %v", err)
	}
	if att.Name != FileName || att.ContentType != ContentType || len(att.Data) == 0 {
		t.Fatalf("attachment = %s %s (%d bytes)", att.Name, att.ContentType, len(att.Data))
	}
	if _, err := excelize.OpenReader(bytes.NewReader(att.Data)); err != nil {
		t.Fatalf("attachment is not a workbook: %v", err)
	}
}
