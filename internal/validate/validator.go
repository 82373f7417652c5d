// Package validate turns raw extraction records into validated, canonical
// invoice structures using the reference data lookups.
package validate

import (
	"encoding/json"
	"fmt"

	"feldbeleg/internal/domain"
	"feldbeleg/internal/match"
	"feldbeleg/internal/normalize"
	"feldbeleg/internal/port"
	"feldbeleg/internal/schema"
)

// nameMinScore is the threshold below which an employee name match is
// rejected instead of guessed.
const nameMinScore = 60

// Result is a validated record of exactly one of the three variants.
type Result struct {
	Type      domain.InvoiceType
	Timesheet *schema.Timesheet
	Expense   *schema.Expense
	Receipt   *schema.Receipt
}

// MarshalInfo serializes the active variant for persistence.
func (r *Result) MarshalInfo() (json.RawMessage, error) {
	var v any
	switch r.Type {
	case domain.InvoiceTypeTimesheet:
		v = r.Timesheet
	case domain.InvoiceTypeExpense:
		v = r.Expense
	case domain.InvoiceTypeReceipt:
		v = r.Receipt
	default:
		return nil, fmt.Errorf("validate.MarshalInfo: %w: %q", domain.ErrUnknownInvoiceType, r.Type)
	}
	data, err := json.Marshal(map[string]any{"invoice_info": v})
	if err != nil {
		return nil, fmt.Errorf("validate.MarshalInfo: %w", err)
	}
	return data, nil
}

// Validator applies the per-variant field rules backed by reference data.
type Validator struct {
	refs  port.ReferenceData
	names *match.NameRegistry
}

// New builds a Validator over refs.
func New(refs port.ReferenceData) *Validator {
	return &Validator{
		refs:  refs,
		names: match.NewNameRegistry(refs.EmployeeNames(), nameMinScore),
	}
}

// Validate normalizes and validates raw as invoiceType. An unrecognized
// type is fatal; field-level problems degrade to empty or fallback values.
func (v *Validator) Validate(invoiceType domain.InvoiceType, raw map[string]any) (*Result, error) {
	switch invoiceType {
	case domain.InvoiceTypeTimesheet:
		return &Result{Type: invoiceType, Timesheet: v.validateTimesheet(raw)}, nil
	case domain.InvoiceTypeExpense:
		return &Result{Type: invoiceType, Expense: v.validateExpense(raw)}, nil
	case domain.InvoiceTypeReceipt:
		return &Result{Type: invoiceType, Receipt: v.validateReceipt(raw)}, nil
	default:
		return nil, fmt.Errorf("validate.Validate: %w: %q", domain.ErrUnknownInvoiceType, invoiceType)
	}
}

func (v *Validator) validateTimesheet(raw map[string]any) *schema.Timesheet {
	ts := schema.BuildTimesheet(raw)
	ts.Name = v.names.Resolve(ts.Name)
	ts.Land = match.ResolveCountry(ts.Land, v.refs.Countries())
	ts.City = match.ResolveCity(ts.City, v.refs.Cities())
	if customer, ok := v.refs.Projects()[ts.ProjectNumber]; ok {
		ts.Customer = customer
	}
	return ts
}

func (v *Validator) validateExpense(raw map[string]any) *schema.Expense {
	e := schema.BuildExpense(raw)
	e.Name = v.names.Resolve(e.Name)
	e.Currency = match.ResolveCurrency(e.Currency, v.refs.Currencies())
	return e
}

func (v *Validator) validateReceipt(raw map[string]any) *schema.Receipt {
	normalized := normalize.Map(raw, func(s string) string {
		return match.ResolveCurrency(s, v.refs.Currencies())
	})
	return schema.BuildReceipt(normalized)
}
