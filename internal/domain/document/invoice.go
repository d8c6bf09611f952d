package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/recyclemart/backend/internal/domain/shared"
)

// InvoiceScope identifies one invoice numbering sequence. Numbers are
// sequential within (document type, calendar month, entity code); each scope
// restarts at 1.
type InvoiceScope struct {
	DocType Type
	Month   time.Time
	Entity  string // generating company name, abbreviated to a 3-letter code
}

// NewInvoiceScope builds the scope for a generation happening at the given
// time on behalf of the given entity.
func NewInvoiceScope(docType Type, entityName string, at time.Time) (InvoiceScope, error) {
	if !docType.IsValid() {
		return InvoiceScope{}, shared.NewDomainError("INVALID_DOC_TYPE", "Document type must be sales_order or purchase_order")
	}
	if EntityCode(entityName) == "" {
		return InvoiceScope{}, shared.NewDomainError("INVALID_ENTITY", "Entity name must contain at least one letter or digit")
	}
	return InvoiceScope{DocType: docType, Month: at, Entity: entityName}, nil
}

// EntityCode abbreviates a company name to the 3-character code embedded in
// invoice numbers: the first three letters or digits, uppercased, padded with
// X when the name is shorter.
func EntityCode(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= 3 {
				break
			}
		}
	}
	code := b.String()
	if code == "" {
		return ""
	}
	for len(code) < 3 {
		code += "X"
	}
	return code
}

// Prefix returns the invoice-number prefix shared by every number in the
// scope, e.g. "SO-0826-GRE-".
func (s InvoiceScope) Prefix() string {
	return fmt.Sprintf("%s-%02d%02d-%s-",
		s.DocType.InvoicePrefix(), int(s.Month.Month()), s.Month.Year()%100, EntityCode(s.Entity))
}

// Format renders the full invoice number for a sequence value
func (s InvoiceScope) Format(seq int) string {
	return fmt.Sprintf("%s%03d", s.Prefix(), seq)
}

// SequenceOf extracts the sequence value from a full invoice number
func SequenceOf(invoiceNumber string) (int, error) {
	idx := strings.LastIndex(invoiceNumber, "-")
	if idx < 0 || idx == len(invoiceNumber)-1 {
		return 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number has no sequence segment")
	}
	seq, err := strconv.Atoi(invoiceNumber[idx+1:])
	if err != nil || seq < 1 {
		return 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number sequence is not a positive integer")
	}
	return seq, nil
}
