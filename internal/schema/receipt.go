package schema

import (
	"strings"
	"time"
)

// ReceiptLineItem is a single purchased item on a receipt.
type ReceiptLineItem struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Amount            *float64 `json:"amount"`
	AmountEach        *float64 `json:"amount_each"`
	AmountExVAT       *float64 `json:"amount_ex_vat"`
	VATAmount         *float64 `json:"vat_amount"`
	VATPercentage     *float64 `json:"vat_percentage"`
	Quantity          *float64 `json:"quantity"`
	UnitOfMeasurement string   `json:"unit_of_measurement"`
	SKU               string   `json:"sku"`
	VATCode           string   `json:"vat_code"`
}

// ReceiptLine groups line items under one description block.
type ReceiptLine struct {
	Description string            `json:"description"`
	LineItems   []ReceiptLineItem `json:"lineitems"`
}

// VATItem is one VAT rate bucket on a receipt.
type VATItem struct {
	Amount                     *float64 `json:"amount"`
	AmountExclVAT              *float64 `json:"amount_excl_vat"`
	AmountInclVAT              *float64 `json:"amount_incl_vat"`
	AmountInclExclVATEstimated *bool    `json:"amount_incl_excl_vat_estimated"`
	Percentage                 *float64 `json:"percentage"`
	Code                       string   `json:"code"`
}

// Receipt is the structured form of a free-form point-of-sale receipt.
type Receipt struct {
	Amount         *float64      `json:"amount"`
	AmountChange   *float64      `json:"amount_change"`
	AmountShipping *float64      `json:"amount_shipping"`
	VATAmount      *float64      `json:"vatamount"`
	AmountExVAT    *float64      `json:"amountexvat"`
	Currency       string        `json:"currency"`
	Date           *time.Time    `json:"date"`
	PurchaseDate   *time.Time    `json:"purchasedate"`
	PurchaseTime   string        `json:"purchasetime"`
	VATItems       []VATItem     `json:"vatitems"`
	VATContext     string        `json:"vat_context"`
	Lines          []ReceiptLine `json:"lines"`

	PaymentMethod            string     `json:"paymentmethod"`
	PaymentAuthCode          string     `json:"payment_auth_code"`
	PaymentCardNumber        string     `json:"payment_card_number"`
	PaymentCardAccountNumber string     `json:"payment_card_account_number"`
	PaymentCardBank          string     `json:"payment_card_bank"`
	PaymentCardIssuer        string     `json:"payment_card_issuer"`
	PaymentDueDate           *time.Time `json:"payment_due_date"`

	TerminalNumber       string `json:"terminal_number"`
	DocumentSubject      string `json:"document_subject"`
	PackageNumber        string `json:"package_number"`
	InvoiceNumber        string `json:"invoice_number"`
	ReceiptNumber        string `json:"receipt_number"`
	ShopNumber           string `json:"shop_number"`
	TransactionNumber    string `json:"transaction_number"`
	TransactionReference string `json:"transaction_reference"`
	OrderNumber          string `json:"order_number"`
	TableNumber          string `json:"table_number"`
	TableGroup           string `json:"table_group"`
	Server               string `json:"server"`

	MerchantName                    string   `json:"merchant_name"`
	MerchantID                      string   `json:"merchant_id"`
	MerchantCOCNumber               string   `json:"merchant_coc_number"`
	MerchantVATNumber               string   `json:"merchant_vat_number"`
	MerchantBankAccountNumber       string   `json:"merchant_bank_account_number"`
	MerchantBankAccountNumberBIC    string   `json:"merchant_bank_account_number_bic"`
	MerchantChainLiabilityBankAccNo string   `json:"merchant_chain_liability_bank_account_number"`
	MerchantChainLiabilityAmount    *float64 `json:"merchant_chain_liability_amount"`
	MerchantBankDomesticAccNo       string   `json:"merchant_bank_domestic_account_number"`
	MerchantBankDomesticBankCode    string   `json:"merchant_bank_domestic_bank_code"`
	MerchantWebsite                 string   `json:"merchant_website"`
	MerchantEmail                   string   `json:"merchant_email"`
	MerchantAddress                 string   `json:"merchant_address"`
	MerchantPhone                   string   `json:"merchant_phone"`

	CustomerName                 string `json:"customer_name"`
	CustomerNumber               string `json:"customer_number"`
	CustomerReference            string `json:"customer_reference"`
	CustomerAddress              string `json:"customer_address"`
	CustomerPhone                string `json:"customer_phone"`
	CustomerVATNumber            string `json:"customer_vat_number"`
	CustomerCOCNumber            string `json:"customer_coc_number"`
	CustomerBankAccountNumber    string `json:"customer_bank_account_number"`
	CustomerBankAccountNumberBIC string `json:"customer_bank_account_number_bic"`
	CustomerWebsite              string `json:"customer_website"`
	CustomerEmail                string `json:"customer_email"`

	DocumentLanguage string `json:"document_language"`
}

// BuildReceipt constructs a Receipt from a raw extraction record that has
// already passed through the generic key-based normalizer.
func BuildReceipt(raw map[string]any) *Receipt {
	r := &Receipt{
		Amount:         floatPtr(raw, "amount"),
		AmountChange:   floatPtr(raw, "amount_change"),
		AmountShipping: floatPtr(raw, "amount_shipping"),
		VATAmount:      floatPtr(raw, "vatamount"),
		AmountExVAT:    floatPtr(raw, "amountexvat"),
		Currency:       strings.TrimSpace(str(raw, "currency")),
		Date:           datePtr(raw, "date"),
		PurchaseDate:   datePtr(raw, "purchasedate"),
		PurchaseTime:   clock(raw, "purchasetime"),
		VATContext:     str(raw, "vat_context"),

		PaymentMethod:            str(raw, "paymentmethod"),
		PaymentAuthCode:          str(raw, "payment_auth_code"),
		PaymentCardNumber:        str(raw, "payment_card_number"),
		PaymentCardAccountNumber: str(raw, "payment_card_account_number"),
		PaymentCardBank:          str(raw, "payment_card_bank"),
		PaymentCardIssuer:        str(raw, "payment_card_issuer"),
		PaymentDueDate:           datePtr(raw, "payment_due_date"),

		TerminalNumber:       str(raw, "terminal_number"),
		DocumentSubject:      str(raw, "document_subject"),
		PackageNumber:        str(raw, "package_number"),
		InvoiceNumber:        str(raw, "invoice_number"),
		ReceiptNumber:        str(raw, "receipt_number"),
		ShopNumber:           str(raw, "shop_number"),
		TransactionNumber:    str(raw, "transaction_number"),
		TransactionReference: str(raw, "transaction_reference"),
		OrderNumber:          str(raw, "order_number"),
		TableNumber:          str(raw, "table_number"),
		TableGroup:           str(raw, "table_group"),
		Server:               str(raw, "server"),

		MerchantName:                    str(raw, "merchant_name"),
		MerchantID:                      str(raw, "merchant_id"),
		MerchantCOCNumber:               str(raw, "merchant_coc_number"),
		MerchantVATNumber:               str(raw, "merchant_vat_number"),
		MerchantBankAccountNumber:       str(raw, "merchant_bank_account_number"),
		MerchantBankAccountNumberBIC:    str(raw, "merchant_bank_account_number_bic"),
		MerchantChainLiabilityBankAccNo: str(raw, "merchant_chain_liability_bank_account_number"),
		MerchantChainLiabilityAmount:    floatPtr(raw, "merchant_chain_liability_amount"),
		MerchantBankDomesticAccNo:       str(raw, "merchant_bank_domestic_account_number"),
		MerchantBankDomesticBankCode:    str(raw, "merchant_bank_domestic_bank_code"),
		MerchantWebsite:                 str(raw, "merchant_website"),
		MerchantEmail:                   str(raw, "merchant_email"),
		MerchantAddress:                 str(raw, "merchant_address"),
		MerchantPhone:                   str(raw, "merchant_phone"),

		CustomerName:                 str(raw, "customer_name"),
		CustomerNumber:               str(raw, "customer_number"),
		CustomerReference:            str(raw, "customer_reference"),
		CustomerAddress:              str(raw, "customer_address"),
		CustomerPhone:                str(raw, "customer_phone"),
		CustomerVATNumber:            str(raw, "customer_vat_number"),
		CustomerCOCNumber:            str(raw, "customer_coc_number"),
		CustomerBankAccountNumber:    str(raw, "customer_bank_account_number"),
		CustomerBankAccountNumberBIC: str(raw, "customer_bank_account_number_bic"),
		CustomerWebsite:              str(raw, "customer_website"),
		CustomerEmail:                str(raw, "customer_email"),

		DocumentLanguage: str(raw, "document_language"),
	}

	for _, vm := range mapSlice(raw, "vatitems") {
		item := VATItem{
			Amount:        floatPtr(vm, "amount"),
			AmountExclVAT: floatPtr(vm, "amount_excl_vat"),
			AmountInclVAT: floatPtr(vm, "amount_incl_vat"),
			Percentage:    floatPtr(vm, "percentage"),
			Code:          str(vm, "code"),
		}
		if b, ok := vm["amount_incl_excl_vat_estimated"].(bool); ok {
			item.AmountInclExclVATEstimated = &b
		}
		r.VATItems = append(r.VATItems, item)
	}
	if len(r.VATItems) == 0 {
		r.VATItems = []VATItem{{}}
	}

	for _, lm := range mapSlice(raw, "lines") {
		line := ReceiptLine{Description: str(lm, "description")}
		for _, im := range mapSlice(lm, "lineitems") {
			line.LineItems = append(line.LineItems, ReceiptLineItem{
				Title:             str(im, "title"),
				Description:       str(im, "description"),
				Amount:            floatPtr(im, "amount"),
				AmountEach:        floatPtr(im, "amount_each"),
				AmountExVAT:       floatPtr(im, "amount_ex_vat"),
				VATAmount:         floatPtr(im, "vat_amount"),
				VATPercentage:     floatPtr(im, "vat_percentage"),
				Quantity:          floatPtr(im, "quantity"),
				UnitOfMeasurement: str(im, "unit_of_measurement"),
				SKU:               str(im, "sku"),
				VATCode:           str(im, "vat_code"),
			})
		}
		if len(line.LineItems) == 0 {
			line.LineItems = []ReceiptLineItem{{}}
		}
		r.Lines = append(r.Lines, line)
	}
	if len(r.Lines) == 0 {
		r.Lines = []ReceiptLine{{LineItems: []ReceiptLineItem{{}}}}
	}
	return r
}
