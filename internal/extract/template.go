package extract

import (
	"fmt"

	"feldbeleg/internal/domain"
)

// BuildPrompt returns the extraction prompt for the given invoice type. The
// prompt carries the exact JSON skeleton the downstream validator expects.
func BuildPrompt(invoiceType domain.InvoiceType) (string, error) {
	skeleton, ok := skeletons[invoiceType]
	if !ok {
		return "", fmt.Errorf("extract.BuildPrompt: %w: %q", domain.ErrUnknownInvoiceType, invoiceType)
	}
	return header + skeleton, nil
}

const header = `You are a document data extraction assistant. Analyze the provided scanned document together with its OCR text and extract ALL data into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- The scans are handwritten forms; prefer the image over the OCR text when they disagree.
- Normalize all dates to DD/MM/YYYY format.
- Normalize all times of day to HH:MM:SS format.
- Use null for values that are not present on the document. Never invent values.
- Extract EVERY line row. Do not skip, summarize, or omit any rows.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

The object must follow this schema:
`

var skeletons = map[domain.InvoiceType]string{
	domain.InvoiceTypeTimesheet: `{
  "name": "",
  "project_number": "",
  "customer": "",
  "city": "",
  "kw": "",
  "land": "",
  "lines": [
    {
      "date": "",
      "start_time": "",
      "end_time": "",
      "break_time": 0,
      "description": "",
      "has_customer_signature": false
    }
  ],
  "is_process_done": false,
  "is_commissioned_work": false,
  "is_without_measuring_technology": false,
  "sign_date": "",
  "has_employee_signature": false
}`,
	domain.InvoiceTypeExpense: `{
  "name": "",
  "project_number": "",
  "is_in_egw": true,
  "currency": "",
  "has_employee_signature": true,
  "sign_date": "",
  "fixed_lines": [
    {
      "title": "Hotel",
      "amount": 0,
      "payment_method": "",
      "with_breakfast": false,
      "can_book_again": false
    },
    {"title": "Fuel", "amount": 0, "payment_method": ""},
    {"title": "Parking fees", "amount": 0, "payment_method": ""},
    {"title": "Rental car", "amount": 0, "payment_method": ""},
    {"title": "Toll", "amount": 0, "payment_method": ""}
  ],
  "lines": [
    {"title": "", "amount": 0, "payment_method": ""}
  ]
}`,
	domain.InvoiceTypeReceipt: `{
  "amount": 0,
  "amount_change": 0,
  "amount_shipping": 0,
  "vatamount": 0,
  "amountexvat": 0,
  "currency": "",
  "date": "",
  "purchasedate": "",
  "purchasetime": "",
  "vatitems": [
    {"amount": 0, "amount_excl_vat": 0, "amount_incl_vat": 0, "percentage": 0, "code": ""}
  ],
  "vat_context": "",
  "lines": [
    {
      "description": "",
      "lineitems": [
        {
          "title": "",
          "description": "",
          "amount": 0,
          "amount_each": 0,
          "amount_ex_vat": 0,
          "vat_amount": 0,
          "vat_percentage": 0,
          "quantity": 0,
          "unit_of_measurement": "",
          "sku": "",
          "vat_code": ""
        }
      ]
    }
  ],
  "paymentmethod": "",
  "payment_auth_code": "",
  "payment_card_number": "",
  "payment_card_account_number": "",
  "payment_card_bank": "",
  "payment_card_issuer": "",
  "payment_due_date": "",
  "terminal_number": "",
  "document_subject": "",
  "package_number": "",
  "invoice_number": "",
  "receipt_number": "",
  "shop_number": "",
  "transaction_number": "",
  "transaction_reference": "",
  "order_number": "",
  "table_number": "",
  "table_group": "",
  "server": "",
  "merchant_name": "",
  "merchant_id": "",
  "merchant_coc_number": "",
  "merchant_vat_number": "",
  "merchant_bank_account_number": "",
  "merchant_bank_account_number_bic": "",
  "merchant_chain_liability_bank_account_number": "",
  "merchant_chain_liability_amount": 0,
  "merchant_bank_domestic_account_number": "",
  "merchant_bank_domestic_bank_code": "",
  "merchant_website": "",
  "merchant_email": "",
  "merchant_address": "",
  "merchant_phone": "",
  "customer_name": "",
  "customer_number": "",
  "customer_reference": "",
  "customer_address": "",
  "customer_phone": "",
  "customer_vat_number": "",
  "customer_coc_number": "",
  "customer_bank_account_number": "",
  "customer_bank_account_number_bic": "",
  "customer_website": "",
  "customer_email": "",
  "document_language": ""
}`,
}
